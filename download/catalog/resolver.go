package catalog

import (
	"net/url"
	"regexp"
	"strings"
)

// idPattern matches the catalog identifier alphabet. Anything outside it is
// rejected before a single byte goes over the wire.
var idPattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

var supportedKinds = map[string]Kind{
	"track":    KindTrack,
	"playlist": KindPlaylist,
	"album":    KindAlbum,
	"artist":   KindArtistTop,
}

// Resolve classifies an input string as a catalog entity and extracts its
// canonical ID. It accepts both the URI form (spotify:kind:id) and the web
// form (https://open.spotify.com/kind/id), ignoring query string and fragment.
func Resolve(input string) (Kind, string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", "", &UnsupportedInputError{Input: input, Reason: "empty input"}
	}

	if strings.HasPrefix(trimmed, "spotify:") {
		return resolveURI(trimmed)
	}
	return resolveWebURL(trimmed)
}

// resolveURI handles the spotify:kind:id form.
func resolveURI(input string) (Kind, string, error) {
	parts := strings.Split(input, ":")
	if len(parts) != 3 {
		return "", "", &UnsupportedInputError{Input: input, Reason: "URI must have exactly three segments"}
	}

	kind, ok := supportedKinds[parts[1]]
	if !ok {
		return "", "", &UnsupportedInputError{Input: input, Reason: "unknown entity kind " + parts[1]}
	}
	if err := validateID(input, parts[2]); err != nil {
		return "", "", err
	}
	return kind, parts[2], nil
}

// resolveWebURL handles the host-prefixed path form.
func resolveWebURL(input string) (Kind, string, error) {
	raw := input
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", "", &UnsupportedInputError{Input: input, Reason: "not a parseable URL"}
	}
	if !strings.HasSuffix(parsed.Hostname(), "spotify.com") {
		return "", "", &UnsupportedInputError{Input: input, Reason: "unrecognized host"}
	}

	// Query string and fragment are dropped by reading only the path.
	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(segments) < 2 {
		return "", "", &UnsupportedInputError{Input: input, Reason: "path is missing kind or id"}
	}

	kind, ok := supportedKinds[segments[0]]
	if !ok {
		return "", "", &UnsupportedInputError{Input: input, Reason: "unknown entity kind " + segments[0]}
	}
	if err := validateID(input, segments[1]); err != nil {
		return "", "", err
	}
	return kind, segments[1], nil
}

func validateID(input, id string) error {
	if !idPattern.MatchString(id) {
		return &UnsupportedInputError{Input: input, Reason: "identifier contains characters outside the catalog alphabet"}
	}
	return nil
}
