// Package credstore handles the three ways credentials reach the bridge:
// base64 blobs embedded in calendar URLs, sealed tokens minted by the server
// and a local credentials file for the command line tools.
package credstore

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/kreta-tools/go-kreta-bridge/internal/data/kreta"
)

// DecodeBlob turns a base64-encoded blob back into credentials. The blob is
// three newline-separated lines: username, password, institute id. Calendar
// subscribers paste these into their client once and never see them again,
// so both the url-safe and the standard alphabet are accepted.
func DecodeBlob(blob string) (*kreta.Credentials, error) {
	raw, err := base64.URLEncoding.DecodeString(blob)
	if err != nil {
		raw, err = base64.StdEncoding.DecodeString(blob)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding credential blob: %w", err)
	}
	return parseLines(string(raw))
}

// EncodeBlob is the inverse of DecodeBlob, used by the CLI to print a
// subscription url for a credentials file.
func EncodeBlob(creds *kreta.Credentials) (string, error) {
	if err := creds.Validate(); err != nil {
		return "", err
	}
	text := creds.Username + "\n" + creds.Password + "\n" + creds.Institute
	return base64.URLEncoding.EncodeToString([]byte(text)), nil
}

// parseLines reads the username/password/institute line triple
func parseLines(text string) (*kreta.Credentials, error) {
	lines := strings.SplitN(strings.TrimRight(text, "\n"), "\n", 3)
	if len(lines) < 3 {
		return nil, fmt.Errorf("credential blob needs three lines: username, password, institute id")
	}

	creds := &kreta.Credentials{
		Username:  strings.TrimSpace(lines[0]),
		Password:  lines[1],
		Institute: strings.TrimSpace(lines[2]),
	}
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	return creds, nil
}
