// Package zone loads the authoritative zone file. YAML, JSON and TOML are
// supported, chosen by file extension.
package zone

import (
	"cmp"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"

	"github.com/haukened/rr-fwd/internal/dns/common/rrdata"
	"github.com/haukened/rr-fwd/internal/dns/common/utils"
	"github.com/haukened/rr-fwd/internal/dns/domain"
)

const (
	keyZoneRoot = "zone_root"
	keyTTL      = "ttl"
	// owner names contain dots, so koanf must not split keys on them
	keyDelim = "/"
)

// Zone is the parsed content of one zone file.
type Zone struct {
	Root    string
	TTL     uint32
	Records []domain.ResourceRecord
}

// LoadZoneFile reads the zone file at path. Records take the file's "ttl"
// value when present and defaultTTL otherwise. Every failure wraps
// domain.ErrZoneLoad.
func LoadZoneFile(path string, defaultTTL time.Duration) (Zone, error) {
	z, err := loadZoneFile(path, defaultTTL)
	if err != nil {
		return Zone{}, fmt.Errorf("%w: %s: %w", domain.ErrZoneLoad, path, err)
	}
	return z, nil
}

func loadZoneFile(path string, defaultTTL time.Duration) (Zone, error) {
	parser, err := parserFor(path)
	if err != nil {
		return Zone{}, err
	}

	k := koanf.New(keyDelim)
	if err := k.Load(file.Provider(path), parser); err != nil {
		return Zone{}, fmt.Errorf("failed to parse zone file: %w", err)
	}

	root := utils.CanonicalDNSName(strings.TrimSpace(k.String(keyZoneRoot)))
	if root == "" {
		return Zone{}, errors.New("missing 'zone_root'")
	}
	if utils.IsPublicSuffix(root) {
		return Zone{}, fmt.Errorf("zone_root %q is a public suffix", root)
	}

	ttl := uint32(defaultTTL / time.Second)
	if k.Exists(keyTTL) {
		v := k.Int64(keyTTL)
		if v <= 0 || v > 1<<31-1 {
			return Zone{}, fmt.Errorf("invalid ttl %v", k.Get(keyTTL))
		}
		ttl = uint32(v)
	}

	z := Zone{Root: root, TTL: ttl}
	for owner, raw := range k.Raw() {
		if owner == keyZoneRoot || owner == keyTTL {
			continue
		}
		rrsets, ok := raw.(map[string]any)
		if !ok {
			return Zone{}, fmt.Errorf("owner %q: expected a map of record types", owner)
		}
		fqdn := utils.CanonicalDNSName(expandName(strings.TrimSpace(owner), root))
		if !utils.InZone(fqdn, root) {
			return Zone{}, fmt.Errorf("owner %q is outside zone %q", owner, root)
		}
		for rrType, val := range rrsets {
			values, err := toStringValues(val)
			if err != nil {
				return Zone{}, fmt.Errorf("owner %q type %s: %w", owner, rrType, err)
			}
			recs, err := buildResourceRecords(fqdn, rrType, values, ttl)
			if err != nil {
				return Zone{}, fmt.Errorf("owner %q type %s: %w", owner, rrType, err)
			}
			z.Records = append(z.Records, recs...)
		}
	}

	slices.SortStableFunc(z.Records, func(a, b domain.ResourceRecord) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.Type, b.Type))
	})
	return z, nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	case ".toml":
		return toml.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported zone file extension %q", ext)
	}
}

// expandName returns the fully qualified domain name for a label, expanding '@' to the root,
// and appending the root if the label is not already absolute.
func expandName(label, root string) string {
	if label == "@" {
		return root
	}
	if strings.HasSuffix(label, ".") {
		return label
	}
	return label + "." + root
}

// toStringValues accepts a single string or a list of strings.
func toStringValues(val any) ([]string, error) {
	switch v := val.(type) {
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, errors.New("empty value")
		}
		return []string{s}, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, elem := range v {
			s, ok := elem.(string)
			if !ok {
				return nil, fmt.Errorf("value %v is not a string", elem)
			}
			if s = strings.TrimSpace(s); s == "" {
				return nil, errors.New("empty value")
			}
			out = append(out, s)
		}
		if len(out) == 0 {
			return nil, errors.New("empty value list")
		}
		return out, nil
	default:
		return nil, fmt.Errorf("value %v is not a string or list of strings", val)
	}
}

// buildResourceRecords encodes each text value of one RRset.
func buildResourceRecords(fqdn, rrType string, values []string, ttl uint32) ([]domain.ResourceRecord, error) {
	t := domain.RRTypeFromString(rrType)
	if t == 0 {
		return nil, fmt.Errorf("unknown record type %q", rrType)
	}
	records := make([]domain.ResourceRecord, 0, len(values))
	for _, s := range values {
		data, err := rrdata.Encode(t, s)
		if err != nil {
			return nil, err
		}
		rr, err := domain.NewResourceRecord(fqdn, t, domain.RRClassIN, ttl, data)
		if err != nil {
			return nil, err
		}
		records = append(records, rr)
	}
	return records, nil
}
