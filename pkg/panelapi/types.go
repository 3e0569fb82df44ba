package panelapi

import (
	"gitlab.bluewillows.net/root/zonesync/pkg/record"
)

// Session carries the identity obtained from a successful login. It is valid
// for one reconciliation only; every reconciliation logs in again.
type Session struct {
	Token  string // session cookie value
	UserID string // numeric account identifier, as returned by the panel
}

// ZoneRecord is the panel's representation of one DNS entry inside a zone.
type ZoneRecord struct {
	Name    string      `json:"name"`
	Type    record.Type `json:"type"`
	Content string      `json:"content"`
	TTL     int         `json:"ttl"`
}

// Zone is a read-only snapshot of one domain's records, keyed by record type.
// Slots may be null in the panel's response; those are kept as nil entries.
type Zone struct {
	Records map[record.Type][]*ZoneRecord `json:"records"`
}

// Find returns the first record matching the desired record's (name, type)
// key, or nil when the zone holds no such record. Absence is a normal
// outcome, not an error.
func (z *Zone) Find(d record.Desired) *ZoneRecord {
	for _, r := range z.Records[d.Type] {
		if r == nil {
			continue
		}
		if d.Matches(r.Name, r.Type) {
			return r
		}
	}
	return nil
}

// FromDesired converts a desired record into the panel's wire shape.
func FromDesired(d record.Desired) ZoneRecord {
	return ZoneRecord{
		Name:    d.Name,
		Type:    d.Type,
		Content: d.Content,
		TTL:     d.TTL,
	}
}
