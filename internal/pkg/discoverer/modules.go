package discoverer

import (
	"context"
	"fmt"

	"github.com/canvas-downloader/canvas-downloader/internal/pkg/canvas"
	"github.com/canvas-downloader/canvas-downloader/pkg/models"
)

// ModulesNode lists the modules of a course, one directory per module
type ModulesNode struct {
	scope
	section
}

func (n *ModulesNode) Key() string { return fmt.Sprintf("course/%d/modules", n.CourseID) }

func (n *ModulesNode) Expand(ctx context.Context, env *Env) (Expansion, error) {
	modules, dump, err := fetchAll[canvas.Module](ctx, env, n.endpoint("modules"))
	if err != nil {
		return Expansion{}, err
	}

	var expansion Expansion
	expansion.Add(n.jsonItem(env, "modules", dump))
	for _, module := range modules {
		expansion.Children = append(expansion.Children, &ModuleItemsNode{scope: n.at(module.Name), Module: module})
	}

	return expansion, nil
}

// ModuleItemsNode resolves the items of one module
type ModuleItemsNode struct {
	scope
	Module canvas.Module
}

func (n *ModuleItemsNode) Key() string { return fmt.Sprintf("module/%d", n.Module.ID) }

func (n *ModuleItemsNode) Expand(ctx context.Context, env *Env) (Expansion, error) {
	endpoint := n.Module.ItemsURL
	if endpoint == "" {
		endpoint = n.endpoint("modules/%d/items", n.Module.ID)
	}

	items, dump, err := fetchAll[canvas.ModuleItem](ctx, env, endpoint)
	if err != nil {
		return Expansion{}, err
	}

	var expansion Expansion
	expansion.Add(n.jsonItem(env, "module_items", dump))
	for _, item := range items {
		switch item.Type {
		case canvas.ModuleItemFile:
			if item.ContentID == nil {
				continue
			}
			expansion.Children = append(expansion.Children, &FileRefNode{scope: n.scope, FileID: *item.ContentID})
		case canvas.ModuleItemPage:
			if item.PageURL == "" {
				continue
			}
			expansion.Children = append(expansion.Children, &PageNode{scope: n.at(item.Title), Slug: item.PageURL})
		case canvas.ModuleItemExternalURL:
			if item.ExternalURL == "" {
				continue
			}
			expansion.Items = append(expansion.Items, n.shortcut(item))
		default:
			env.Logger.Debug("module item skipped", "module", n.Module.Name, "item", item.Title, "type", item.Type)
		}
	}

	return expansion, nil
}

// shortcut returns an internet shortcut file pointing at an external URL
func (n *ModuleItemsNode) shortcut(item canvas.ModuleItem) *models.Item {
	content := fmt.Sprintf("[InternetShortcut]\nURL=%s\n", item.ExternalURL)
	return n.inlineItem(item.Title+".url", []byte(content), "")
}
