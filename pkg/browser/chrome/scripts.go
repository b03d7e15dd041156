package chrome

import (
	"encoding/json"
	"fmt"
)

const readyStateScript = `document.readyState`

// quote renders s as a JavaScript string literal.
func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// withElement wraps body in a function that resolves selector to el and
// returns missing when nothing matches.
func withElement(selector, missing, body string) string {
	return fmt.Sprintf(`(() => { const el = document.querySelector(%s); if (!el) return %s; %s })()`,
		quote(selector), missing, body)
}

func existsScript(selector string) string {
	return fmt.Sprintf(`document.querySelector(%s) !== null`, quote(selector))
}

// setValueScript fires input and change so the page's own listeners see
// the new value.
func setValueScript(selector, value string) string {
	return withElement(selector, "false", fmt.Sprintf(
		`el.value = %s; el.dispatchEvent(new Event('input', {bubbles: true})); el.dispatchEvent(new Event('change', {bubbles: true})); return true;`,
		quote(value)))
}

func setCheckedScript(selector string, checked bool) string {
	return withElement(selector, "false", fmt.Sprintf(
		`el.checked = %t; el.dispatchEvent(new Event('change', {bubbles: true})); return true;`, checked))
}

func clickScript(selector string) string {
	return withElement(selector, "false", `el.click(); return true;`)
}

func childCountScript(selector string) string {
	return withElement(selector, "-1", `return el.children.length;`)
}

func navigateScript(url string) string {
	return fmt.Sprintf(`window.location.href = %s`, quote(url))
}
