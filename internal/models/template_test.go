package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestComponentsJSON(t *testing.T) {
	input := `[
		{"type":"HEADER","format":"TEXT","text":"Hello"},
		{"type":"BODY","text":"Hi {{1}}, your order {{2}} shipped"},
		{"type":"FOOTER","text":"Reply STOP to opt out"},
		{"type":"BUTTONS","buttons":[{"type":"URL","text":"Track","url":"https://example.com/t"}]}
	]`

	var cs Components
	if err := json.Unmarshal([]byte(input), &cs); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if len(cs) != 4 {
		t.Fatalf("expected 4 components, got %d", len(cs))
	}

	kinds := []string{ComponentHeader, ComponentBody, ComponentFooter, ComponentButtons}
	for i, k := range kinds {
		if cs[i].Kind() != k {
			t.Errorf("component %d: expected %s, got %s", i, k, cs[i].Kind())
		}
	}

	buttons, ok := cs[3].(ButtonsComponent)
	if !ok {
		t.Fatalf("expected ButtonsComponent, got %T", cs[3])
	}
	if len(buttons.Buttons) != 1 || buttons.Buttons[0].URL != "https://example.com/t" {
		t.Errorf("unexpected buttons: %+v", buttons.Buttons)
	}

	if cs.Body() != "Hi {{1}}, your order {{2}} shipped" {
		t.Errorf("unexpected body: %q", cs.Body())
	}

	data, err := json.Marshal(cs)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"type":"FOOTER"`) {
		t.Errorf("expected type discriminator in %s", data)
	}
}

func TestComponentsUnknownType(t *testing.T) {
	var cs Components
	err := json.Unmarshal([]byte(`[{"type":"CAROUSEL"}]`), &cs)
	if err == nil {
		t.Fatal("expected error for unknown component type")
	}
}

func TestTemplatePatchApply(t *testing.T) {
	tmpl := Template{Name: "welcome", Language: "en_US", Category: CategoryMarketing}

	name := "welcome_v2"
	cat := CategoryUtility
	TemplatePatch{Name: &name, Category: &cat}.Apply(&tmpl)

	if tmpl.Name != "welcome_v2" {
		t.Errorf("expected name welcome_v2, got %s", tmpl.Name)
	}
	if tmpl.Category != CategoryUtility {
		t.Errorf("expected category UTILITY, got %s", tmpl.Category)
	}
	if tmpl.Language != "en_US" {
		t.Errorf("language should be unchanged, got %s", tmpl.Language)
	}
}
