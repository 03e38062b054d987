package enrich

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"cellar/internal/model"
	"cellar/internal/util"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// stripCodeFences unwraps a reply that is a single markdown code block.
// Fence markers inside the body are left alone.
func stripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	body := strings.TrimLeft(trimmed[3:], " \t\r\n")
	if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = strings.TrimLeft(body[4:], " \t\r\n")
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}

// firstJSONObject returns the first balanced top-level {...} in s. Braces
// inside JSON strings are ignored.
func firstJSONObject(s string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			if start >= 0 {
				inString = true
			}
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start < 0 {
				continue
			}
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

type labelPayload struct {
	Name     util.FlexString `json:"name"`
	Producer util.FlexString `json:"producer"`
	Vintage  util.FlexString `json:"vintage"`
	Varietal util.FlexString `json:"varietal"`
	Region   util.FlexString `json:"region"`
	Notes    util.FlexString `json:"notes"`
}

// ParseLabel decodes a label-read reply into a draft. Varietal is kept only
// when it is a known varietal; region falls back to "Other".
func ParseLabel(text string) (Draft, error) {
	cleaned := stripCodeFences(text)
	if cleaned == "" {
		return Draft{}, errors.New("label reply: empty payload")
	}

	var p *labelPayload
	if err := json.Unmarshal([]byte(cleaned), &p); err != nil || p == nil {
		obj, ok := firstJSONObject(cleaned)
		if !ok {
			if err == nil {
				err = errors.New("not a JSON object")
			}
			return Draft{}, fmt.Errorf("label reply: %w", err)
		}
		p = nil
		if err := json.Unmarshal([]byte(obj), &p); err != nil {
			return Draft{}, fmt.Errorf("label reply: %w", err)
		}
	}

	d := Draft{
		Name:     p.Name.String(),
		Producer: p.Producer.String(),
		Region:   model.NormalizeRegion(p.Region.String()),
		Notes:    p.Notes.String(),
	}
	if v, ok := util.ParseYear(p.Vintage.String()); ok {
		d.Vintage = &v
	}
	if v, ok := model.KnownVarietal(p.Varietal.String()); ok {
		d.Varietal = v
	}
	return d, nil
}

type windowPayload struct {
	DrinkFrom  util.FlexString `json:"drinkFrom"`
	DrinkTo    util.FlexString `json:"drinkTo"`
	Source     util.FlexString `json:"source"`
	Confidence util.FlexString `json:"confidence"`
	Notes      util.FlexString `json:"notes"`
}

// ParseWindow extracts a drink window from a research reply. Years outside
// 1900-2200 and unknown confidence levels are dropped. ok is false when the
// reply holds nothing usable.
func ParseWindow(text string) (Window, bool) {
	obj, ok := firstJSONObject(stripCodeFences(text))
	if !ok {
		return Window{}, false
	}
	var p windowPayload
	if err := json.Unmarshal([]byte(obj), &p); err != nil {
		return Window{}, false
	}

	w := Window{
		Source:     p.Source.String(),
		Confidence: strings.ToLower(p.Confidence.String()),
		Notes:      p.Notes.String(),
	}
	w.DrinkFrom, _ = util.ParseInt(p.DrinkFrom.String())
	w.DrinkTo, _ = util.ParseInt(p.DrinkTo.String())

	if err := validate.Struct(w); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return Window{}, false
		}
		for _, fe := range verrs {
			switch fe.StructField() {
			case "DrinkFrom":
				w.DrinkFrom = 0
			case "DrinkTo":
				w.DrinkTo = 0
			case "Confidence":
				w.Confidence = ""
			}
		}
	}
	return w, w.Usable()
}
