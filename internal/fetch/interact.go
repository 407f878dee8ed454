package fetch

import (
	"encoding/json"
	"fmt"
)

// ClickGroup is a set of keywords; every clickable element whose visible text
// contains one of them is clicked once. Flag is the dataset key marking an
// element as already clicked for this group.
type ClickGroup struct {
	Flag     string   `json:"flag"`
	Keywords []string `json:"keywords"`
}

// DefaultClickGroups expands listing descriptions and reveals contact details.
func DefaultClickGroups() []ClickGroup {
	return []ClickGroup{
		{Flag: "__clickedShowMore", Keywords: []string{"show more"}},
		{Flag: "__clickedContact", Keywords: []string{"show contact number", "show contact", "show phone number"}},
		{Flag: "__clickedCall", Keywords: []string{"call", "whatsapp", "chat"}},
	}
}

const (
	scrollTopJS    = `window.scrollTo(0, 0);`
	scrollBottomJS = `window.scrollTo(0, document.body.scrollHeight);`
	bodyTextJS     = `document.body ? document.body.innerText : ""`
)

// clickScriptTemplate takes the JSON-encoded click groups and evaluates to the
// number of elements clicked.
const clickScriptTemplate = `(function (groups) {
  const buttons = Array.from(
    document.querySelectorAll("button, a[role='button'], div[role='button']")
  );
  let clicked = 0;
  groups.forEach(function (group) {
    buttons.forEach(function (btn) {
      const txt = (btn.innerText || btn.textContent || "").toLowerCase().trim();
      if (!txt) return;
      if (btn.dataset[group.flag]) return;
      if (group.keywords.some(function (k) { return txt.includes(k); })) {
        btn.dataset[group.flag] = "1";
        try {
          btn.scrollIntoView({behavior: "instant", block: "center"});
        } catch (e) {}
        btn.click();
        clicked++;
      }
    });
  });
  return clicked;
})(%s)`

// ClickScript renders the interaction script for groups.
func ClickScript(groups []ClickGroup) (string, error) {
	if groups == nil {
		groups = []ClickGroup{}
	}
	encoded, err := json.Marshal(groups)
	if err != nil {
		return "", fmt.Errorf("failed to encode click groups: %w", err)
	}
	return fmt.Sprintf(clickScriptTemplate, encoded), nil
}
