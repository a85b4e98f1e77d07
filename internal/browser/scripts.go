package browser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"tracetour/internal/page"
)

// overlayID is the id of the spotlight element injected into the page.
const overlayID = "tracetour-spotlight"

// speechBinding is the CDP binding the page calls when an utterance ends.
const speechBinding = "__tracetourSpeechDone"

// jsString quotes s as a JavaScript string literal. HTML characters are
// left readable; the result is evaluated, never embedded in markup.
func jsString(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return `""`
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// navigateExpr fills the navigate template with the quoted view id. A
// template without a verb is called with the view as its only argument.
func navigateExpr(template, view string) string {
	if !strings.Contains(template, "%s") {
		return fmt.Sprintf("(%s)(%s)", template, jsString(view))
	}
	return fmt.Sprintf(template, jsString(view))
}

func existsExpr(selector string) string {
	return fmt.Sprintf(`document.querySelector(%s) !== null`, jsString(selector))
}

// boundsResult avoids null results, which chromedp reports as errors.
type boundsResult struct {
	Found  bool    `json:"found"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (b boundsResult) rect() page.Rect {
	return page.Rect{X: b.X, Y: b.Y, Width: b.Width, Height: b.Height}
}

func boundsExpr(selector string) string {
	return fmt.Sprintf(`(function (sel) {
	const el = document.querySelector(sel);
	if (!el) { return { found: false }; }
	const r = el.getBoundingClientRect();
	return { found: true, x: r.left, y: r.top, width: r.width, height: r.height };
})(%s)`, jsString(selector))
}

func clickExpr(selector string) string {
	return fmt.Sprintf(`(function (sel, pressMs) {
	const el = document.querySelector(sel);
	if (!el) { return false; }
	const prev = el.style.transform;
	el.style.transform = 'scale(0.95)';
	setTimeout(function () { el.style.transform = prev; }, pressMs);
	el.click();
	return true;
})(%s, %d)`, jsString(selector), page.PressDuration.Milliseconds())
}

// fillExpr assigns through the prototype's native setter so frameworks that
// track the last seen value notice the change.
func fillExpr(selector, value string) string {
	return fmt.Sprintf(`(function (sel, value) {
	const el = document.querySelector(sel);
	if (!el) { return false; }
	let proto = HTMLInputElement.prototype;
	if (el instanceof HTMLTextAreaElement) { proto = HTMLTextAreaElement.prototype; }
	if (el instanceof HTMLSelectElement) { proto = HTMLSelectElement.prototype; }
	const desc = Object.getOwnPropertyDescriptor(proto, 'value');
	if (desc && desc.set) { desc.set.call(el, value); } else { el.value = value; }
	el.dispatchEvent(new Event('input', { bubbles: true }));
	return true;
})(%s, %s)`, jsString(selector), jsString(value))
}

func scrollExpr(selector string) string {
	return fmt.Sprintf(`(function (sel) {
	const el = document.querySelector(sel);
	if (!el) { return false; }
	el.scrollIntoView({ behavior: 'smooth', block: 'center' });
	return true;
})(%s)`, jsString(selector))
}

func showOverlayExpr(r page.Rect) string {
	return fmt.Sprintf(`(function (id, x, y, w, h) {
	let el = document.getElementById(id);
	if (!el) {
		el = document.createElement('div');
		el.id = id;
		el.style.cssText = 'position:fixed;pointer-events:none;z-index:2147483646;' +
			'border:4px solid #10b981;border-radius:8px;' +
			'box-shadow:0 0 0 9999px rgba(0,0,0,0.5),0 0 20px rgba(16,185,129,0.5);' +
			'transition:all 300ms ease-in-out;';
		document.body.appendChild(el);
	}
	el.style.left = x + 'px';
	el.style.top = y + 'px';
	el.style.width = w + 'px';
	el.style.height = h + 'px';
	el.style.display = 'block';
	return true;
})(%s, %g, %g, %g, %g)`, jsString(overlayID), r.X, r.Y, r.Width, r.Height)
}

func hideOverlayExpr() string {
	return fmt.Sprintf(`(function (id) {
	const el = document.getElementById(id);
	if (el) { el.style.display = 'none'; }
	return true;
})(%s)`, jsString(overlayID))
}

// speakExpr starts an utterance. Ending or erroring reports id through the
// binding, unless a later speak or cancel has replaced it in the page.
func speakExpr(id uint64, text string, rate float64) string {
	return fmt.Sprintf(`(function (id, text, rate, binding) {
	const synth = window.speechSynthesis;
	if (!synth || typeof SpeechSynthesisUtterance === 'undefined') { return false; }
	window.__tracetourUtterance = id;
	synth.cancel();
	const u = new SpeechSynthesisUtterance(text);
	u.rate = rate;
	const done = function () {
		if (window.__tracetourUtterance !== id) { return; }
		try { window[binding](String(id)); } catch (e) {}
	};
	u.onend = done;
	u.onerror = done;
	synth.speak(u);
	return true;
})(%d, %s, %g, %s)`, id, jsString(text), rate, jsString(speechBinding))
}

func cancelSpeechExpr() string {
	return `(function () {
	window.__tracetourUtterance = 0;
	if (window.speechSynthesis) { window.speechSynthesis.cancel(); }
	return true;
})()`
}
