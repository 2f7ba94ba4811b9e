// Package sheets reads the link table from a Google Sheet using a service account.
package sheets

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// DefaultRange assumes column A holds the slug and column B the destination.
const DefaultRange = "Links!A:B"

// ErrMissingCredentials is returned when the service account email or key is empty.
var ErrMissingCredentials = errors.New("missing Google service account credentials")

// Config identifies the sheet and the service account allowed to read it.
type Config struct {
	SpreadsheetID string
	Range         string
	Email         string
	PrivateKey    string // PEM encoded
}

// Source fetches link rows from a spreadsheet range.
type Source struct {
	svc           *sheetsapi.Service
	spreadsheetID string
	readRange     string
}

// New creates a Source authenticated as the configured service account with
// read-only access. The sheet must be shared with the service account email.
func New(ctx context.Context, cfg Config) (*Source, error) {
	if cfg.Email == "" || cfg.PrivateKey == "" {
		return nil, ErrMissingCredentials
	}

	jwtCfg := &jwt.Config{
		Email:      cfg.Email,
		PrivateKey: []byte(cfg.PrivateKey),
		Scopes:     []string{sheetsapi.SpreadsheetsReadonlyScope},
		TokenURL:   google.JWTTokenURL,
	}

	return NewWithOptions(ctx, cfg.SpreadsheetID, cfg.Range, option.WithHTTPClient(jwtCfg.Client(ctx)))
}

// NewWithOptions creates a Source with explicit client options.
func NewWithOptions(ctx context.Context, spreadsheetID, readRange string, opts ...option.ClientOption) (*Source, error) {
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if readRange == "" {
		readRange = DefaultRange
	}

	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}

	return &Source{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		readRange:     readRange,
	}, nil
}

// FetchRows reads every row in the configured range as strings.
func (s *Source) FetchRows(ctx context.Context) ([][]string, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet range %s: %w", s.readRange, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			if cell != nil {
				row[i] = fmt.Sprint(cell)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
