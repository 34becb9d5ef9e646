package record

import (
	"fmt"
	"strings"

	"github.com/miekg/dns"
)

// OwnerName qualifies the record name against origin. "@" and "" resolve to
// the apex; names ending in a dot are already absolute.
func (r Record) OwnerName(origin string) string {
	origin = dns.Fqdn(strings.TrimSpace(origin))
	name := strings.TrimSpace(r.Name)
	switch {
	case name == "" || name == "@":
		return origin
	case dns.IsFqdn(name):
		return name
	case origin == ".":
		return dns.Fqdn(name)
	default:
		return name + "." + origin
	}
}

// RR converts the record into a miekg/dns resource record rooted at origin.
// It doubles as a syntax check: content a resolver could not load fails here.
func (r Record) RR(origin string) (dns.RR, error) {
	owner := r.OwnerName(origin)
	rrtype, ok := dns.StringToType[strings.ToUpper(r.Type)]
	if !ok {
		return nil, fmt.Errorf("record: unknown type %q", r.Type)
	}

	if rrtype == dns.TypeTXT {
		parts := SplitTXT(r.Content)
		var txt []string
		for _, part := range parts {
			txt = append(txt, ChunkTXT(part)...)
		}
		if len(txt) == 0 {
			return nil, fmt.Errorf("record: empty TXT content")
		}
		return &dns.TXT{
			Hdr: dns.RR_Header{Name: owner, Rrtype: dns.TypeTXT, Class: dns.ClassINET, Ttl: uint32(r.TTL)},
			Txt: txt,
		}, nil
	}

	content := r.Content
	if rrtype == dns.TypeSRV || rrtype == dns.TypeMX {
		content = fmt.Sprintf("%d %s", r.Priority, content)
	}
	line := fmt.Sprintf("%s %d IN %s %s", owner, r.TTL, dns.TypeToString[rrtype], content)
	rr, err := dns.NewRR(line)
	if err != nil {
		return nil, fmt.Errorf("record: parse %q: %w", line, err)
	}
	if rr == nil {
		return nil, fmt.Errorf("record: empty record for %q", line)
	}
	return rr, nil
}

// ZoneLine renders the record in zone-file presentation format.
func (r Record) ZoneLine(origin string) (string, error) {
	rr, err := r.RR(origin)
	if err != nil {
		return "", err
	}
	return rr.String(), nil
}
