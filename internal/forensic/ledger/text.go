package ledger

import (
	"strings"

	"pigate/internal/forensic/models"
)

// Digest input must read back byte-identical from JSONB, which stores the
// replacement character json.Marshal escapes invalid UTF-8 to.
func validText(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}

func validTexts(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = validText(s)
	}
	return out
}

func validValue(v any) any {
	switch v := v.(type) {
	case string:
		return validText(v)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = validValue(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[validText(k)] = validValue(e)
		}
		return out
	default:
		return v
	}
}

func validOperationData(d models.OperationData) models.OperationData {
	d.Currency = validText(d.Currency)
	d.Domain = validText(d.Domain)
	d.DomainName = validText(d.DomainName)
	d.Destination = validText(d.Destination)
	d.SourceDomain = validText(d.SourceDomain)
	d.TargetDomain = validText(d.TargetDomain)
	if d.Extra != nil {
		d.Extra = validValue(d.Extra).(map[string]any)
	}
	return d
}

func validRequestMeta(m models.RequestMeta) models.RequestMeta {
	return models.RequestMeta{
		IP:        validText(m.IP),
		UserAgent: validText(m.UserAgent),
		Origin:    validText(m.Origin),
		Client:    validText(m.Client),
	}
}
