package ports

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type Collection string

const (
	CollectionSessions     Collection = "sessions"
	CollectionSessionState Collection = "session_state"
	CollectionRoster       Collection = "attendance"
	CollectionResolutions  Collection = "resolutions"
	CollectionCaucusLog    Collection = "caucus_log"
)

// SessionScoped lists the collections whose records carry a session_id and
// are removed together with their session.
var SessionScoped = []Collection{
	CollectionSessionState,
	CollectionRoster,
	CollectionResolutions,
	CollectionCaucusLog,
}

// Filter is a conjunction of field equalities over record fields.
type Filter map[string]any

type Patch map[string]any

func (f Filter) Matches(record map[string]any) bool {
	for field, want := range f {
		got, ok := record[field]
		if !ok {
			return false
		}
		if FormatValue(got) != FormatValue(want) {
			return false
		}
	}
	return true
}

func (f Filter) With(field string, value any) Filter {
	out := make(Filter, len(f)+1)
	for k, v := range f {
		out[k] = v
	}
	out[field] = value
	return out
}

// Key renders the filter canonically so equal filters map to the same string.
func (f Filter) Key() string {
	fields := make([]string, 0, len(f))
	for field := range f {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+"="+FormatValue(f[field]))
	}
	return strings.Join(parts, "&")
}

func FormatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

type ChangeKind string

const (
	ChangeInsert ChangeKind = "insert"
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
)

// Change is one row level notification. Deletes carry at least the id of the removed record.
type Change struct {
	Kind       ChangeKind
	Collection Collection
	Record     json.RawMessage
}

type Subscription interface {
	Close() error
}

type RemoteStore interface {
	Select(ctx context.Context, collection Collection, filter Filter) ([]json.RawMessage, error)
	Insert(ctx context.Context, collection Collection, records []json.RawMessage) ([]json.RawMessage, error)
	Update(ctx context.Context, collection Collection, filter Filter, patch Patch) ([]json.RawMessage, error)
	Delete(ctx context.Context, collection Collection, filter Filter) error
	Subscribe(ctx context.Context, collection Collection, filter Filter, onChange func(Change)) (Subscription, error)
}
