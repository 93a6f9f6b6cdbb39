package export

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/frc-scouting/scout-sync/pkg/scouting"
)

var header = []string{"season", "event_code", "match_key", "team_number", "scout_id", "created_at", "metrics_json"}

// FileName is the download name of an export taken at now.
func FileName(now time.Time) string {
	return fmt.Sprintf("scouting_export_%d.csv", now.UnixMilli())
}

// WriteCSV writes one line per record. Identifying columns are written as
// is; the attribute map goes into a single quoted JSON column with its
// quotes doubled. Pit exports carry an extra photos column in the same
// encoding. Lines are separated by "\n" with no trailing newline.
func WriteCSV(w io.Writer, purpose scouting.FormPurpose, records []scouting.Record) error {
	bw := bufio.NewWriter(w)

	cols := header
	if purpose == scouting.PurposePit {
		cols = append(append([]string(nil), header...), "photos_json")
	}
	if _, err := bw.WriteString(strings.Join(cols, ",")); err != nil {
		return err
	}

	for _, r := range records {
		metrics, err := quotedJSON(r.Attributes)
		if err != nil {
			return fmt.Errorf("encoding metrics of entry %s: %w", r.ID, err)
		}
		line := []string{
			strconv.Itoa(r.Season),
			r.EventCode,
			r.MatchKey,
			strconv.Itoa(r.TeamNumber),
			r.SubmitterID,
			createdAt(r.CreatedAt),
			metrics,
		}
		if purpose == scouting.PurposePit {
			photos := r.Photos
			if photos == nil {
				photos = []string{}
			}
			encoded, err := quotedJSON(photos)
			if err != nil {
				return fmt.Errorf("encoding photos of entry %s: %w", r.ID, err)
			}
			line = append(line, encoded)
		}
		if _, err := bw.WriteString("\n" + strings.Join(line, ",")); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Bytes renders the export in memory, for attachments.
func Bytes(purpose scouting.FormPurpose, records []scouting.Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, purpose, records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func quotedJSON(v interface{}) (string, error) {
	if attrs, ok := v.(scouting.Attributes); ok && attrs == nil {
		v = scouting.Attributes{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	raw := strings.TrimSuffix(buf.String(), "\n")
	return `"` + strings.ReplaceAll(raw, `"`, `""`) + `"`, nil
}

func createdAt(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
