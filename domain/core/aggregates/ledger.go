package aggregates

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/Jabramco/memebase/domain/core/entities"
	"github.com/Jabramco/memebase/domain/core/valueobjects"
)

// WeekBucket holds the interaction records of one week keyed by meme ID.
// Meme keys keep their first-insertion order, including across JSON round
// trips, so scans over a bucket are deterministic.
type WeekBucket struct {
	order   []string
	records map[string]*entities.InteractionRecord
}

// NewWeekBucket creates an empty bucket
func NewWeekBucket() *WeekBucket {
	return &WeekBucket{records: make(map[string]*entities.InteractionRecord)}
}

// Get returns a copy of the record for memeID
func (b *WeekBucket) Get(memeID string) (entities.InteractionRecord, bool) {
	if b == nil {
		return entities.InteractionRecord{}, false
	}
	rec, ok := b.records[memeID]
	if !ok {
		return entities.InteractionRecord{}, false
	}
	return *rec, true
}

// Len returns the number of memes with a record in the bucket
func (b *WeekBucket) Len() int {
	if b == nil {
		return 0
	}
	return len(b.order)
}

// MemeIDs returns the meme keys in insertion order
func (b *WeekBucket) MemeIDs() []string {
	if b == nil {
		return nil
	}
	ids := make([]string, len(b.order))
	copy(ids, b.order)
	return ids
}

// Each calls fn for every record in insertion order
func (b *WeekBucket) Each(fn func(memeID string, rec entities.InteractionRecord)) {
	if b == nil {
		return
	}
	for _, id := range b.order {
		fn(id, *b.records[id])
	}
}

func (b *WeekBucket) ensure(memeID string) *entities.InteractionRecord {
	rec, ok := b.records[memeID]
	if !ok {
		rec = &entities.InteractionRecord{}
		b.records[memeID] = rec
		b.order = append(b.order, memeID)
	}
	return rec
}

func (b *WeekBucket) put(memeID string, rec entities.InteractionRecord) {
	*b.ensure(memeID) = rec
}

// MarshalJSON writes the bucket as an object with keys in insertion order
func (b *WeekBucket) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range b.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(b.records[id])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a bucket object keeping the key order of the input.
// A null bucket decodes as empty, records with an empty meme key are dropped
// and every record is normalized.
func (b *WeekBucket) UnmarshalJSON(data []byte) error {
	b.order = nil
	b.records = make(map[string]*entities.InteractionRecord)

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("week bucket: expected object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		memeID, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("week bucket: expected meme key, got %v", keyTok)
		}
		var rec entities.InteractionRecord
		if err := dec.Decode(&rec); err != nil {
			return fmt.Errorf("week bucket: record %q: %w", memeID, err)
		}
		if memeID == "" {
			continue
		}
		rec.Normalize()
		b.put(memeID, rec)
	}

	_, err = dec.Token()
	return err
}

// InteractionLedger maps weeks to their buckets. It is the unit persisted in
// the key-value store and is rewritten whole on every mutation.
type InteractionLedger struct {
	order   []valueobjects.WeekID
	buckets map[valueobjects.WeekID]*WeekBucket
}

// NewInteractionLedger creates an empty ledger
func NewInteractionLedger() *InteractionLedger {
	return &InteractionLedger{buckets: make(map[valueobjects.WeekID]*WeekBucket)}
}

// ParseLedger decodes the persisted form of a ledger. Empty input and JSON
// null both yield an empty ledger.
func ParseLedger(data []byte) (*InteractionLedger, error) {
	ledger := NewInteractionLedger()
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ledger, nil
	}
	if err := json.Unmarshal(data, ledger); err != nil {
		return nil, err
	}
	return ledger, nil
}

// Encode returns the persisted form of the ledger
func (l *InteractionLedger) Encode() ([]byte, error) {
	return json.Marshal(l)
}

// Record applies one interaction to the record of memeID in week, creating
// the bucket and record as needed, and returns the updated record.
func (l *InteractionLedger) Record(week valueobjects.WeekID, memeID string, kind valueobjects.InteractionKind) entities.InteractionRecord {
	rec := l.ensureBucket(week).ensure(memeID)
	rec.Apply(kind)
	return *rec
}

// Bucket returns the bucket of week, or nil when the week has no records
func (l *InteractionLedger) Bucket(week valueobjects.WeekID) *WeekBucket {
	return l.buckets[week]
}

// Stats returns the record of memeID in week, zero-valued when absent
func (l *InteractionLedger) Stats(week valueobjects.WeekID, memeID string) entities.InteractionRecord {
	rec, _ := l.buckets[week].Get(memeID)
	return rec
}

// Weeks returns the week keys in insertion order
func (l *InteractionLedger) Weeks() []valueobjects.WeekID {
	weeks := make([]valueobjects.WeekID, len(l.order))
	copy(weeks, l.order)
	return weeks
}

// Retain drops every bucket whose week is not in keep and returns how many
// buckets were removed.
func (l *InteractionLedger) Retain(keep []valueobjects.WeekID) int {
	allowed := make(map[valueobjects.WeekID]struct{}, len(keep))
	for _, w := range keep {
		allowed[w] = struct{}{}
	}

	kept := l.order[:0]
	pruned := 0
	for _, w := range l.order {
		if _, ok := allowed[w]; ok {
			kept = append(kept, w)
			continue
		}
		delete(l.buckets, w)
		pruned++
	}
	l.order = kept
	return pruned
}

func (l *InteractionLedger) ensureBucket(week valueobjects.WeekID) *WeekBucket {
	bucket, ok := l.buckets[week]
	if !ok {
		bucket = NewWeekBucket()
		l.buckets[week] = bucket
		l.order = append(l.order, week)
	}
	return bucket
}

// MarshalJSON writes {weekId: {memeId: record}} with keys in insertion order
func (l *InteractionLedger) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, w := range l.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(w))
		if err != nil {
			return nil, err
		}
		val, err := l.buckets[w].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a ledger object keeping the week order of the input
func (l *InteractionLedger) UnmarshalJSON(data []byte) error {
	l.order = nil
	l.buckets = make(map[valueobjects.WeekID]*WeekBucket)

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("ledger: expected object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		week, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("ledger: expected week key, got %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("ledger: week %q: %w", week, err)
		}
		bucket := NewWeekBucket()
		if err := bucket.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("ledger: week %q: %w", week, err)
		}

		id := valueobjects.WeekID(week)
		if _, seen := l.buckets[id]; !seen {
			l.order = append(l.order, id)
		}
		l.buckets[id] = bucket
	}

	_, err = dec.Token()
	return err
}
