// Package ingest parses tabular timetables into scenario snapshots. A load
// is all-or-nothing: any row failure rejects the whole batch.
package ingest

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"crisisdrill/internal/domain"
	"crisisdrill/internal/scenario"
)

// ErrEmptySource is returned for a timetable with no data rows.
var ErrEmptySource = errors.New("source has no rows")

// RowError is a validation failure scoped to one timetable row. Row numbers
// are 1-based and include the header row, matching what the operator sees in
// a spreadsheet.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string { return fmt.Sprintf("row %d: %v", e.Row, e.Err) }
func (e *RowError) Unwrap() error { return e.Err }

// Canonical column names after header normalization. French aliases are what
// real timetables use.
const (
	colTime        = "time"
	colType        = "type"
	colSender      = "sender"
	colStimulus    = "stimulus"
	colRecipient   = "recipient"
	colID          = "id"
	colReaction    = "expected reaction"
	colComment     = "comment"
	colDeliverable = "deliverable"
)

var columnAliases = map[string]string{
	"time":              colTime,
	"horaire":           colTime,
	"type":              colType,
	"sender":            colSender,
	"emetteur":          colSender,
	"stimulus":          colStimulus,
	"stimuli":           colStimulus,
	"recipient":         colRecipient,
	"destination":       colRecipient,
	"destinataire":      colRecipient,
	"id":                colID,
	"expected reaction": colReaction,
	"reaction attendue": colReaction,
	"comment":           colComment,
	"commentaire":       colComment,
	"deliverable":       colDeliverable,
	"livrable":          colDeliverable,
}

var minutesRe = regexp.MustCompile(`(\d+)`)

// stripMarks removes diacritics so headers compare accent-insensitively.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func normalizeHeader(s string) string {
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// Parser converts tables into snapshots. All times are normalized into loc.
type Parser struct {
	loc *time.Location
	now func() time.Time
}

func NewParser(loc *time.Location) *Parser {
	return &Parser{loc: loc, now: time.Now}
}

// ParseScenario builds a full snapshot from a timetable. Rows whose type is
// not tweet, message or countdown are skipped; any malformed recognized row
// fails the whole load.
func (p *Parser) ParseScenario(table [][]string) (*scenario.Snapshot, error) {
	cols, rows, err := p.header(table, colTime, colType, colSender, colStimulus)
	if err != nil {
		return nil, err
	}

	var (
		tweets     []domain.Tweet
		messages   []domain.Message
		countdowns []domain.CountdownWindow
		rawRows    []domain.RawRow
	)
	messageIDs := make(map[string]int)

	for i, row := range rows {
		rowNum := i + 2 // 1-based plus header

		typ := normalizeHeader(cell(row, cols, colType))
		if typ == "decompte" {
			typ = "countdown"
		}
		if typ != "tweet" && typ != "message" && typ != "countdown" {
			continue
		}

		at, err := ParseCellTime(cell(row, cols, colTime), p.loc, p.now())
		if err != nil {
			return nil, &RowError{Row: rowNum, Err: err}
		}

		raw := domain.RawRow{
			ID:               strings.TrimSpace(cell(row, cols, colID)),
			Type:             typ,
			Sender:           strings.TrimSpace(cell(row, cols, colSender)),
			Destination:      strings.TrimSpace(cell(row, cols, colRecipient)),
			Stimulus:         strings.TrimSpace(cell(row, cols, colStimulus)),
			ExpectedReaction: strings.TrimSpace(cell(row, cols, colReaction)),
			Comment:          strings.TrimSpace(cell(row, cols, colComment)),
			Deliverable:      strings.TrimSpace(cell(row, cols, colDeliverable)),
			At:               at,
		}
		rawRows = append(rawRows, raw)

		switch typ {
		case "tweet":
			sender := raw.Sender
			if sender == "" {
				sender = "Anonymous"
			}
			tweets = append(tweets, domain.Tweet{
				ID:     fmt.Sprintf("tw-%d-%d", at.Unix(), rowNum),
				At:     at,
				Sender: sender,
				Text:   raw.Stimulus,
			})

		case "message":
			dests := domain.SplitDestinations(raw.Destination)
			if len(dests) == 0 {
				return nil, &RowError{Row: rowNum, Err: errors.New("message has no recipient")}
			}
			id := raw.ID
			if id == "" {
				id = fmt.Sprintf("msg-%d-%d", at.Unix(), rowNum)
			}
			if first, dup := messageIDs[id]; dup {
				return nil, &RowError{Row: rowNum, Err: fmt.Errorf("message id %q already used in row %d", id, first)}
			}
			messageIDs[id] = rowNum
			messages = append(messages, domain.Message{
				ID:           id,
				At:           at,
				Sender:       raw.Sender,
				Destinations: dests,
				Text:         raw.Stimulus,
			})

		case "countdown":
			minutes, err := countdownMinutes(raw.Stimulus)
			if err != nil {
				return nil, &RowError{Row: rowNum, Err: err}
			}
			countdowns = append(countdowns, domain.CountdownWindow{
				Start:   at,
				End:     at.Add(time.Duration(minutes) * time.Minute),
				Minutes: minutes,
			})
		}
	}

	return scenario.NewSnapshot(tweets, messages, countdowns, rawRows), nil
}

// ParseTweets handles the narrower tweet-only source: time, sender and
// stimulus columns, no type column. Fully blank rows are skipped.
func (p *Parser) ParseTweets(table [][]string) ([]domain.Tweet, error) {
	cols, rows, err := p.header(table, colTime, colSender, colStimulus)
	if err != nil {
		return nil, err
	}

	var tweets []domain.Tweet
	for i, row := range rows {
		rowNum := i + 2
		if blankRow(row) {
			continue
		}
		at, err := ParseCellTime(cell(row, cols, colTime), p.loc, p.now())
		if err != nil {
			return nil, &RowError{Row: rowNum, Err: err}
		}
		sender := strings.TrimSpace(cell(row, cols, colSender))
		if sender == "" {
			sender = "Anonymous"
		}
		tweets = append(tweets, domain.Tweet{
			ID:     fmt.Sprintf("tw-%d-%d", at.Unix(), rowNum),
			At:     at,
			Sender: sender,
			Text:   strings.TrimSpace(cell(row, cols, colStimulus)),
		})
	}
	return tweets, nil
}

// header maps canonical column names to indexes and checks the required set.
func (p *Parser) header(table [][]string, required ...string) (map[string]int, [][]string, error) {
	if len(table) < 2 {
		return nil, nil, ErrEmptySource
	}

	cols := make(map[string]int)
	for i, h := range table[0] {
		if canonical, ok := columnAliases[normalizeHeader(h)]; ok {
			if _, dup := cols[canonical]; !dup {
				cols[canonical] = i
			}
		}
	}

	var missing []string
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return cols, table[1:], nil
}

// countdownMinutes extracts the first integer from the stimulus text as a
// positive duration in minutes.
func countdownMinutes(stimulus string) (int, error) {
	m := minutesRe.FindString(stimulus)
	if m == "" {
		return 0, errors.New("countdown stimulus must contain the number of minutes (e.g. 15)")
	}
	minutes, err := strconv.Atoi(m)
	if err != nil || minutes <= 0 {
		return 0, errors.New("countdown minutes must be a positive integer")
	}
	return minutes, nil
}

func cell(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
