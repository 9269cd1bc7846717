package utils

import (
	"strings"

	"github.com/pingcap/errors"
)

// ParseKeyValueList parses a "k1=v1,k2=v2" style option list, as accepted
// for extra driver connection arguments. Empty input yields an empty map.
func ParseKeyValueList(s string) (map[string]string, error) {
	out := make(map[string]string)
	s = strings.TrimSpace(s)
	if s == "" {
		return out, nil
	}
	for _, pair := range strings.Split(s, ",") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			return nil, errors.Errorf("Invalid key=value pair: %q", pair)
		}
		key := strings.TrimSpace(kv[0])
		if key == "" {
			return nil, errors.Errorf("Empty key in pair: %q", pair)
		}
		out[key] = strings.TrimSpace(kv[1])
	}
	return out, nil
}
