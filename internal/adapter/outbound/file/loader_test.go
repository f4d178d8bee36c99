package file

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const yamlPolicy = `
policy:
  policyId: urn:test:policy
  version: "1.0"
  ruleCombiningAlgId: urn:oasis:names:tc:xacml:3.0:rule-combining-algorithm:deny-overrides
  rules:
    - ruleId: r1
      effect: Permit
`

const jsonPolicySet = `{
  "policySet": {
    "policySetId": "urn:test:set",
    "version": "2.0",
    "policyCombiningAlgId": "urn:oasis:names:tc:xacml:3.0:policy-combining-algorithm:deny-overrides",
    "children": []
  }
}`

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadPolicyFileYAML(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "p.yaml", yamlPolicy)
	doc, err := LoadPolicyFile(path)
	if err != nil {
		t.Fatalf("LoadPolicyFile: %v", err)
	}
	if doc.Policy == nil || doc.Policy.PolicyID != "urn:test:policy" || doc.Source != path {
		t.Errorf("doc = %+v", doc)
	}
	if len(doc.Policy.Rules) != 1 || doc.Policy.Rules[0].Effect != "Permit" {
		t.Errorf("rules = %+v", doc.Policy.Rules)
	}
}

func TestLoadPolicyFileJSON(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "s.json", jsonPolicySet)
	doc, err := LoadPolicyFile(path)
	if err != nil {
		t.Fatalf("LoadPolicyFile: %v", err)
	}
	if doc.PolicySet == nil || doc.PolicySet.PolicySetID != "urn:test:set" {
		t.Errorf("doc = %+v", doc)
	}
}

func TestLoadPolicyFileRejectsBadShapes(t *testing.T) {
	dir := t.TempDir()

	both := write(t, dir, "both.json", `{"policy": {"policyId": "a"}, "policySet": {"policySetId": "b"}}`)
	if _, err := LoadPolicyFile(both); err == nil {
		t.Error("document with both policy and policySet accepted")
	}

	neither := write(t, dir, "neither.json", `{}`)
	if _, err := LoadPolicyFile(neither); err == nil {
		t.Error("empty document accepted")
	}

	ext := write(t, dir, "policy.txt", "hello")
	if _, err := LoadPolicyFile(ext); err == nil || !strings.Contains(err.Error(), "extension") {
		t.Errorf("unsupported extension: %v", err)
	}
}

func TestLoadCorpusPattern(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.yaml", yamlPolicy)
	write(t, dir, "b.json", jsonPolicySet)

	docs, err := LoadCorpus([]string{"file://" + dir + "/*.yaml", "file://" + dir + "/*.json"})
	if err != nil {
		t.Fatalf("LoadCorpus: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("loaded %d documents, want 2", len(docs))
	}

	if _, err := LoadCorpus([]string{"file://" + dir + "/*.xml"}); err == nil {
		t.Error("pattern matching nothing did not error")
	}
}

func TestLoadRequest(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "req.json", `{
		"categories": [{
			"categoryId": "urn:oasis:names:tc:xacml:3.0:attribute-category:resource",
			"attributes": [{
				"attributeId": "urn:test:id",
				"values": [{"dataType": "http://www.w3.org/2001/XMLSchema#string", "value": "x"}]
			}]
		}]
	}`)
	req, err := LoadRequest(path)
	if err != nil {
		t.Fatalf("LoadRequest: %v", err)
	}
	if len(req.Categories) != 1 || len(req.Categories[0].Attributes) != 1 {
		t.Errorf("request = %+v", req)
	}
}
