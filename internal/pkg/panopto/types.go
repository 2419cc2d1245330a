package panopto

import (
	"regexp"
	"strconv"
	"time"
)

// Session is one recording of a folder
type Session struct {
	DeliveryID  string `json:"DeliveryID"`
	FolderID    string `json:"FolderID"`
	SessionID   string `json:"SessionID"`
	SessionName string `json:"SessionName"`
	StartTime   string `json:"StartTime"`
	IosVideoURL string `json:"IosVideoUrl"`
}

// Folder is a sub-folder of a folder
type Folder struct {
	ID   string `json:"ID"`
	Name string `json:"Name"`
}

type sessionsPage struct {
	D struct {
		TotalNumber int       `json:"TotalNumber"`
		Results     []Session `json:"Results"`
		Subfolders  []Folder  `json:"Subfolders"`
	} `json:"d"`
}

type deliveryInfo struct {
	SessionID    string `json:"SessionId"`
	ViewerFileID string `json:"ViewerFileId"`
}

var dateRegexp = regexp.MustCompile(`/Date\((-?\d+)\)/`)

// Started returns the start time of the recording. Panopto encodes it as
// /Date(<milliseconds since epoch>)/.
func (s Session) Started() (time.Time, bool) {
	match := dateRegexp.FindStringSubmatch(s.StartTime)
	if match == nil {
		return time.Time{}, false
	}

	ms, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return time.Time{}, false
	}

	return time.UnixMilli(ms).UTC(), true
}
