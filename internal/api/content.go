package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/takallem/takallem/internal/course"
	"github.com/takallem/takallem/internal/media"
)

// Languages returns the catalogue: every language with its courses and
// dialects.
func (c *Client) Languages(ctx context.Context) ([]course.LanguageOption, error) {
	var out []course.LanguageOption
	err := c.do(ctx, call{method: http.MethodGet, route: "/languages", path: "/languages"}, &out)
	return out, err
}

// Modules lists a course's modules. Once a dialect is chosen the listing is
// dialect-specific.
func (c *Client) Modules(ctx context.Context, name course.CourseName, dialect course.Dialect) ([]course.Module, error) {
	cl := call{method: http.MethodGet, route: "/modules/{course}", path: path("/modules", name)}
	if dialect != "" {
		cl.route = "/modules/{course}/{dialect}"
		cl.path = path("/modules", name, dialect)
	}
	var out []course.Module
	err := c.do(ctx, cl, &out)
	return out, err
}

// Resource fetches a module's full content.
func (c *Client) Resource(ctx context.Context, id int) (*course.Resource, error) {
	var r course.Resource
	if err := c.do(ctx, call{method: http.MethodGet, route: "/resource/{id}", path: path("/resource", id)}, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// FetchMedia downloads a media reference. Relative references resolve
// against the service. The token is never sent.
func (c *Client) FetchMedia(ctx context.Context, ref string, maxBytes int64) (media.File, error) {
	target, err := c.resolve(ref)
	if err != nil {
		return media.File{}, &APIError{Route: "media", Err: err}
	}

	req, err := http.NewRequestWithContext(WithRoute(ctx, "media"), http.MethodGet, target, nil)
	if err != nil {
		return media.File{}, &APIError{Route: "media", Err: err}
	}
	resp, err := c.media.Do(req)
	if err != nil {
		return media.File{}, &APIError{Route: "media", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return media.File{}, &APIError{Status: resp.StatusCode, Route: "media"}
	}

	r := io.Reader(resp.Body)
	if maxBytes > 0 {
		r = io.LimitReader(resp.Body, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return media.File{}, &APIError{Route: "media", Err: err}
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return media.File{}, &APIError{Route: "media", Err: fmt.Errorf("media larger than %d bytes", maxBytes)}
	}

	u, _ := url.Parse(target)
	name := "media"
	if u != nil {
		if i := strings.LastIndexByte(u.Path, '/'); i >= 0 && i < len(u.Path)-1 {
			name = u.Path[i+1:]
		}
	}
	return media.File{Name: name, ContentType: media.DetectType(name, data), Data: data}, nil
}

func (c *Client) resolve(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	if u.IsAbs() {
		return ref, nil
	}
	base, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return "", err
	}
	return base.ResolveReference(u).String(), nil
}
