package notify

import "strings"

// RenderTemplate substitutes {variable} placeholders with values from vars.
// Unknown placeholders are left intact so template mistakes stay visible in
// the delivered message instead of silently disappearing.
func RenderTemplate(template string, vars map[string]string) string {
	if template == "" || len(vars) == 0 {
		return template
	}
	var b strings.Builder
	b.Grow(len(template))
	rest := template
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			return b.String()
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			b.WriteString(rest)
			return b.String()
		}
		end += open
		key := rest[open+1 : end]
		value, ok := vars[key]
		b.WriteString(rest[:open])
		if ok {
			b.WriteString(value)
		} else {
			b.WriteString(rest[open : end+1])
		}
		rest = rest[end+1:]
	}
}

// TemplateVariables lists the placeholder names found in a template.
func TemplateVariables(template string) []string {
	var names []string
	seen := make(map[string]struct{})
	rest := template
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			return names
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return names
		}
		end += open
		key := rest[open+1 : end]
		if key != "" {
			if _, ok := seen[key]; !ok {
				seen[key] = struct{}{}
				names = append(names, key)
			}
		}
		rest = rest[end+1:]
	}
}
