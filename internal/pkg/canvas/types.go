package canvas

// User is the owner of the API token
type User struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SessionToken is a one-time web login URL
type SessionToken struct {
	SessionURL              string `json:"session_url"`
	RequiresTermsAcceptance bool   `json:"requires_terms_acceptance"`
}

// Term is an enrollment term
type Term struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Enrollment is the role of the user in a course
type Enrollment struct {
	Type            string `json:"type"`
	Role            string `json:"role"`
	EnrollmentState string `json:"enrollment_state"`
}

// Course is a course the user can see
type Course struct {
	ID               int64        `json:"id"`
	Name             string       `json:"name"`
	CourseCode       string       `json:"course_code"`
	EnrollmentTermID int64        `json:"enrollment_term_id"`
	Term             *Term        `json:"term"`
	Enrollments      []Enrollment `json:"enrollments"`
	SyllabusBody     string       `json:"syllabus_body"`
}

// Folder is a node of the course files tree
type Folder struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	FullName       string `json:"full_name"`
	FoldersURL     string `json:"folders_url"`
	FilesURL       string `json:"files_url"`
	ParentFolderID *int64 `json:"parent_folder_id"`
	LockedForUser  bool   `json:"locked_for_user"`
	FilesCount     int    `json:"files_count"`
	FoldersCount   int    `json:"folders_count"`
}

// File is a downloadable attachment
type File struct {
	ID            int64  `json:"id"`
	FolderID      int64  `json:"folder_id"`
	DisplayName   string `json:"display_name"`
	Filename      string `json:"filename"`
	ContentType   string `json:"content-type"`
	Size          int64  `json:"size"`
	URL           string `json:"url"`
	UpdatedAt     string `json:"updated_at"`
	LockedForUser bool   `json:"locked_for_user"`
}

// Module groups module items
type Module struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Position   int    `json:"position"`
	ItemsCount int    `json:"items_count"`
	ItemsURL   string `json:"items_url"`
	State      string `json:"state"`
}

// Module item types handled during discovery
const (
	ModuleItemFile        = "File"
	ModuleItemPage        = "Page"
	ModuleItemExternalURL = "ExternalUrl"
	ModuleItemSubHeader   = "SubHeader"
)

// ModuleItem is one entry of a module
type ModuleItem struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Type        string `json:"type"`
	ContentID   *int64 `json:"content_id"`
	HTMLURL     string `json:"html_url"`
	URL         string `json:"url"`
	PageURL     string `json:"page_url"`
	ExternalURL string `json:"external_url"`
	Position    int    `json:"position"`
	Indent      int    `json:"indent"`
}

// Page is a wiki page as listed
type Page struct {
	PageID        int64  `json:"page_id"`
	URL           string `json:"url"`
	Title         string `json:"title"`
	UpdatedAt     string `json:"updated_at"`
	LockedForUser bool   `json:"locked_for_user"`
}

// PageBody is a wiki page with its HTML content
type PageBody struct {
	Page
	Body string `json:"body"`
}

// Assignment is a course assignment
type Assignment struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
	DueAt           string   `json:"due_at"`
	SubmissionTypes []string `json:"submission_types"`
}

// Submission is the current user's submission to an assignment
type Submission struct {
	ID          *int64 `json:"id"`
	Body        string `json:"body"`
	Attachments []File `json:"attachments"`
}

// DiscussionAuthor is the poster of a discussion
type DiscussionAuthor struct {
	ID          *int64 `json:"id"`
	DisplayName string `json:"display_name"`
}

// Discussion is a discussion topic or an announcement
type Discussion struct {
	ID          int64             `json:"id"`
	Title       string            `json:"title"`
	Message     string            `json:"message"`
	PostedAt    string            `json:"posted_at"`
	Author      *DiscussionAuthor `json:"author"`
	Attachments []File            `json:"attachments"`
}

// DiscussionView is the full thread of a discussion topic
type DiscussionView struct {
	View []Comment `json:"view"`
}

// Comment is one entry of a discussion thread
type Comment struct {
	ID          int64     `json:"id"`
	UserID      *int64    `json:"user_id"`
	UserName    string    `json:"user_name"`
	Message     string    `json:"message"`
	CreatedAt   string    `json:"created_at"`
	Attachment  *File     `json:"attachment"`
	Attachments []File    `json:"attachments"`
	Replies     []Comment `json:"replies"`
}
