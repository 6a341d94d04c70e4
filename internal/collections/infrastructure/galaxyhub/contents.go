package galaxyhub

import (
	"context"
	"fmt"
	"net/http"

	"github.com/felixgeelhaar/aapbridge/internal/collections/domain"
	"github.com/felixgeelhaar/aapbridge/pkg/htmlmd"
)

const (
	contentTypeRole   = "role"
	contentTypeModule = "module"
)

type contentItem struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Description string `json:"description"`
}

type versionContentsResponse struct {
	versionDetailResponse
	Contents []contentItem `json:"contents"`
}

type docsBlobResponse struct {
	DocsBlob struct {
		CollectionReadme struct {
			Name string `json:"name"`
			HTML string `json:"html"`
		} `json:"collection_readme"`
		Contents []docsBlobContent `json:"contents"`
	} `json:"docs_blob"`
}

type docsBlobContent struct {
	ContentName string `json:"content_name"`
	ContentType string `json:"content_type"`
	ReadmeHTML  string `json:"readme_html"`
}

// enrichment is the merged outcome of the version detail and docs-blob calls.
type enrichment struct {
	contents      domain.Contents
	downloadURL   string
	repositoryURL string
	dependencies  map[string]string
}

// fetchContents runs the dependent enrichment sequence: version detail for
// the contents list, then the docs blob for long-form documentation, then a
// merge. Calls execute strictly in order.
func (c *Client) fetchContents(ctx context.Context, namespace, name, version string) (enrichment, error) {
	var versionResp versionContentsResponse
	versionPath := fmt.Sprintf("/collections/%s/%s/versions/%s/", namespace, name, version)
	if err := c.api.Request(ctx, http.MethodGet, versionPath, nil, &versionResp); err != nil {
		return enrichment{}, fmt.Errorf("version detail fetch failed: %w", err)
	}

	var docsResp docsBlobResponse
	docsPath := versionPath + "docs-blob/"
	if err := c.api.Request(ctx, http.MethodGet, docsPath, nil, &docsResp); err != nil {
		return enrichment{}, fmt.Errorf("docs-blob fetch failed: %w", err)
	}

	return enrichment{
		contents:      mergeContents(versionResp, docsResp),
		downloadURL:   versionResp.DownloadURL,
		repositoryURL: versionResp.Metadata.Repository,
		dependencies:  versionResp.Metadata.Dependencies,
	}, nil
}

// mergeContents reconciles the contents list with the docs blob: roles pick
// up their README (converted to markdown), modules keep name and description
// only, and unknown content types are skipped.
func mergeContents(versionResp versionContentsResponse, docsResp docsBlobResponse) domain.Contents {
	readmeByRole := make(map[string]string)
	for _, doc := range docsResp.DocsBlob.Contents {
		if doc.ContentType == contentTypeRole && doc.ReadmeHTML != "" {
			readmeByRole[doc.ContentName] = doc.ReadmeHTML
		}
	}

	var roles []domain.Role
	var modules []domain.Module
	for _, item := range versionResp.Contents {
		switch item.ContentType {
		case contentTypeRole:
			roles = append(roles, domain.Role{
				Name:           item.Name,
				Description:    item.Description,
				ReadmeMarkdown: htmlmd.Convert(readmeByRole[item.Name]),
			})
		case contentTypeModule:
			modules = append(modules, domain.NewModule(item.Name, item.Description, ""))
		default:
			// Plugins, filters and other content types are not surfaced.
		}
	}

	return domain.Contents{
		Description:    versionResp.Metadata.Description,
		Roles:          roles,
		Modules:        modules,
		ReadmeMarkdown: htmlmd.Convert(docsResp.DocsBlob.CollectionReadme.HTML),
	}
}
