package repo

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"regbot/model"
)

const (
	sheetEvents      = "Events"
	sheetAccelerator = "Accelerator"

	dateLayout = "2006-01-02 15:04:05"
)

var headersEvents = []string{
	"User ID",
	"Full Name",
	"Affiliated",
	"Program",
	"Contact",
	"Question",
	"Registration Date",
}

var headersAccelerator = []string{
	"User ID",
	"Full Name",
	"Project Name",
	"Email",
	"Contact",
	"Track",
	"Stage",
	"Description",
	"Pitch Session",
	"Presentation URL",
	"Team",
	"Affiliated",
	"Registration Date",
}

// RegistrationStore is the persistence contract consumed by the handlers
// and the broadcast/report services.
type RegistrationStore interface {
	SaveRegistration(ctx context.Context, flow model.Flow, fields map[string]string) error
	UserIDs(ctx context.Context, audience model.Audience) ([]int64, error)
	CountSince(ctx context.Context, flow model.Flow, since time.Time) (int, error)
}

// SheetsConnector writes and reads registrations in one Google spreadsheet
// with two sheets, one per flow. It is append-only on the write path and
// does no retries; callers decide what a failure means for the user.
type SheetsConnector struct {
	svc           *sheets.Service
	spreadsheetID string
}

// NewSheetsConnector creates a connector from a service-account credentials
// file.
func NewSheetsConnector(ctx context.Context, credentialsFile, spreadsheetID string) (*SheetsConnector, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}
	return &SheetsConnector{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// SaveRegistration appends one row for a completed registration, creating
// the header row first if the sheet is still empty. The header check and
// the append are two calls, not atomic; the bot is the sheet's only writer.
func (c *SheetsConnector) SaveRegistration(ctx context.Context, flow model.Flow, fields map[string]string) error {
	sheet, headers, err := sheetFor(flow)
	if err != nil {
		return err
	}
	if err := c.ensureHeaders(ctx, sheet, headers); err != nil {
		return err
	}
	row, err := rowFor(flow, fields)
	if err != nil {
		return err
	}
	return c.appendRow(ctx, sheet, row)
}

// UserIDs returns the user ids registered in the audience's sheet(s).
// Blank and non-numeric cells are skipped. For the combined audience the
// result is deduplicated preserving first-seen order.
func (c *SheetsConnector) UserIDs(ctx context.Context, audience model.Audience) ([]int64, error) {
	switch audience {
	case model.AudienceAll, model.AudienceAccelerator, model.AudienceEvents:
	default:
		return nil, model.ErrUnknownAudience
	}

	var events, accelerator []int64
	var err error
	if audience == model.AudienceAll || audience == model.AudienceEvents {
		events, err = c.readUserIDs(ctx, sheetEvents)
		if err != nil {
			return nil, err
		}
	}
	if audience == model.AudienceAll || audience == model.AudienceAccelerator {
		accelerator, err = c.readUserIDs(ctx, sheetAccelerator)
		if err != nil {
			return nil, err
		}
	}
	return mergeAudience(audience, events, accelerator), nil
}

func mergeAudience(audience model.Audience, events, accelerator []int64) []int64 {
	switch audience {
	case model.AudienceEvents:
		return events
	case model.AudienceAccelerator:
		return accelerator
	default:
		merged := make([]int64, 0, len(events)+len(accelerator))
		merged = append(merged, events...)
		merged = append(merged, accelerator...)
		return lo.Uniq(merged)
	}
}

// CountSince counts rows whose registration date is at or after since.
// Rows with unparsable dates are ignored.
func (c *SheetsConnector) CountSince(ctx context.Context, flow model.Flow, since time.Time) (int, error) {
	sheet, headers, err := sheetFor(flow)
	if err != nil {
		return 0, err
	}
	col := columnLetter(len(headers) - 1)
	rng := fmt.Sprintf("%s!%s2:%s", sheet, col, col)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("reading %s dates: %w", sheet, err)
	}
	return countSince(resp.Values, since), nil
}

func (c *SheetsConnector) ensureHeaders(ctx context.Context, sheet string, headers []string) error {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, sheet+"!1:1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("checking %s headers: %w", sheet, err)
	}
	if len(resp.Values) > 0 {
		return nil
	}
	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	return c.appendRow(ctx, sheet, row)
}

func (c *SheetsConnector) appendRow(ctx context.Context, sheet string, row []interface{}) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{row}}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, sheet+"!A1", vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("appending to %s: %w", sheet, err)
	}
	return nil
}

func (c *SheetsConnector) readUserIDs(ctx context.Context, sheet string) ([]int64, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, sheet+"!A2:A").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("reading %s user ids: %w", sheet, err)
	}
	return parseUserIDs(resp.Values), nil
}

func sheetFor(flow model.Flow) (string, []string, error) {
	switch flow {
	case model.FlowEvents:
		return sheetEvents, headersEvents, nil
	case model.FlowAccelerator:
		return sheetAccelerator, headersAccelerator, nil
	default:
		return "", nil, model.ErrUnknownFlow
	}
}

// rowFor lays the collected fields out in the sheet's fixed column order.
func rowFor(flow model.Flow, fields map[string]string) ([]interface{}, error) {
	var keys []string
	switch flow {
	case model.FlowEvents:
		keys = []string{
			model.FieldUserID,
			model.FieldFullName,
			model.FieldAffiliated,
			model.FieldProgram,
			model.FieldContact,
			model.FieldQuestion,
			model.FieldDate,
		}
	case model.FlowAccelerator:
		keys = []string{
			model.FieldUserID,
			model.FieldFullName,
			model.FieldProject,
			model.FieldEmail,
			model.FieldContact,
			model.FieldTrack,
			model.FieldStage,
			model.FieldDescription,
			model.FieldPitch,
			model.FieldPresentationURL,
			model.FieldTeam,
			model.FieldAffiliated,
			model.FieldDate,
		}
	default:
		return nil, model.ErrUnknownFlow
	}
	row := make([]interface{}, len(keys))
	for i, k := range keys {
		row[i] = fields[k]
	}
	return row, nil
}

func parseUserIDs(values [][]interface{}) []int64 {
	var ids []int64
	for _, row := range values {
		if len(row) == 0 {
			continue
		}
		s, ok := row[0].(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func countSince(values [][]interface{}, since time.Time) int {
	n := 0
	for _, row := range values {
		if len(row) == 0 {
			continue
		}
		s, ok := row[0].(string)
		if !ok {
			continue
		}
		ts, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), time.Local)
		if err != nil {
			continue
		}
		if !ts.Before(since) {
			n++
		}
	}
	return n
}

// columnLetter converts a zero-based column index to its A1 letter.
func columnLetter(i int) string {
	s := ""
	for i >= 0 {
		s = string(rune('A'+i%26)) + s
		i = i/26 - 1
	}
	return s
}
