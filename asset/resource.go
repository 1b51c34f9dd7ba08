package asset

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// A Resource wraps a streamable local file or a remote file served over
// http/https. Geometry readers use it to resolve included files relative
// to the file that references them.
type Resource struct {
	io.ReadCloser
	url *url.URL
}

// Returns the path to this resource.
func (r *Resource) Path() string {
	return r.url.String()
}

// Returns true if the Resource is streamed over http/https.
func (r *Resource) IsRemote() bool {
	return r.url.Scheme != ""
}

// Create a new Resource data stream. If relTo is specified and pathToResource
// does not define a scheme, then the path to the new Resource is generated
// by joining the directory of relTo and pathToResource.
//
// The caller must close the returned Resource.
func NewResource(pathToResource string, relTo *Resource) (*Resource, error) {
	resURL, err := resolveURL(pathToResource, relTo)
	if err != nil {
		return nil, err
	}

	var reader io.ReadCloser
	switch resURL.Scheme {
	case "":
		reader, err = os.Open(filepath.Clean(resURL.Path))
		if err != nil {
			return nil, err
		}
	case "http", "https":
		reader, err = fetch(resURL)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("resource: unsupported scheme '%s'", resURL.Scheme)
	}

	return &Resource{
		ReadCloser: reader,
		url:        resURL,
	}, nil
}

// Create a resource from a reader.
func NewResourceFromStream(name string, source io.Reader) *Resource {
	resURL, _ := url.Parse(name)
	return &Resource{
		ReadCloser: io.NopCloser(source),
		url:        resURL,
	}
}

// Parse a resource path and, for relative paths, resolve it against the
// location of relTo.
func resolveURL(pathToResource string, relTo *Resource) (*url.URL, error) {
	// Windows-style paths are normalized before parsing them as URLs
	resURL, err := url.Parse(strings.Replace(pathToResource, `\`, `/`, -1))
	if err != nil {
		return nil, err
	}

	if resURL.Scheme != "" || relTo == nil || filepath.IsAbs(resURL.Path) {
		return resURL, nil
	}

	relPath := resURL.Path
	resURL, _ = url.Parse(relTo.url.String())
	prefix := resURL.Path
	if resURL.Scheme == "" {
		prefix, err = filepath.Abs(relTo.url.String())
		if err != nil {
			return nil, fmt.Errorf("resource: could not detect abs path for %s; %s", relTo.url.String(), err.Error())
		}
	}
	resURL.Path = filepath.Dir(prefix) + "/" + relPath
	return resURL, nil
}

func fetch(resURL *url.URL) (io.ReadCloser, error) {
	resp, err := http.Get(resURL.String())
	if err != nil {
		return nil, fmt.Errorf("resource: could not fetch '%s': %s", resURL.String(), err)
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, fmt.Errorf("resource: could not fetch '%s': status %d", resURL.String(), resp.StatusCode)
	}
	return resp.Body, nil
}
