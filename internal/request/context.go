package request

import (
	"fmt"
	"strings"
	"time"

	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/expr"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/value"
)

// attrKey addresses the attributes of one (category, id) pair.
type attrKey struct {
	category string
	id       string
}

// bagKey addresses one memoized designator resolution.
type bagKey struct {
	category string
	id       string
	issuer   string
	datatype string
}

type cachedBag struct {
	bag   value.Bag
	found bool
	err   error
}

// Context is the per-decision evaluation context: an immutable view of the
// request attributes plus memoization tables for designator and variable
// results. Selector lookups are not memoized: each call walks the content
// tree again. It lives for exactly one decision and is not shared across
// goroutines.
type Context struct {
	attrs        map[attrKey][]*Attribute
	content      map[string]*ContentNode
	datatypes    *value.Registry
	strictIssuer bool

	bags map[bagKey]cachedBag
	vars map[string]expr.Result
}

var _ expr.EvaluationContext = (*Context)(nil)

// NewContext builds the context for one request. The environment category
// is completed with current-time, current-date, and current-dateTime when
// the request does not carry them, stamped once from the given clock so the
// whole decision sees one instant.
func NewContext(req *Request, datatypes *value.Registry, strictIssuer bool, now time.Time) *Context {
	c := &Context{
		attrs:        make(map[attrKey][]*Attribute),
		content:      make(map[string]*ContentNode),
		datatypes:    datatypes,
		strictIssuer: strictIssuer,
		bags:         make(map[bagKey]cachedBag),
		vars:         make(map[string]expr.Result),
	}
	for i := range req.Categories {
		cat := &req.Categories[i]
		if cat.Content != nil {
			c.content[cat.CategoryID] = cat.Content
		}
		for j := range cat.Attributes {
			a := &cat.Attributes[j]
			k := attrKey{category: cat.CategoryID, id: a.AttributeID}
			c.attrs[k] = append(c.attrs[k], a)
		}
	}
	c.ensureEnvironment(now)
	return c
}

// ensureEnvironment synthesizes the current-time attributes when absent.
func (c *Context) ensureEnvironment(now time.Time) {
	defaults := []struct {
		id       string
		datatype string
		lexical  string
	}{
		{AttributeCurrentTime, value.TypeTime, now.Format("15:04:05.999999999Z07:00")},
		{AttributeCurrentDate, value.TypeDate, now.Format("2006-01-02Z07:00")},
		{AttributeCurrentDateTime, value.TypeDateTime, now.Format("2006-01-02T15:04:05.999999999Z07:00")},
	}
	for _, d := range defaults {
		k := attrKey{category: CategoryEnvironment, id: d.id}
		if len(c.attrs[k]) > 0 {
			continue
		}
		c.attrs[k] = append(c.attrs[k], &Attribute{
			AttributeID: d.id,
			Values:      []RawValue{{DataType: d.datatype, Value: d.lexical}},
		})
	}
}

// AttributeBag resolves and memoizes a designator lookup. A designator
// without an issuer matches any issuer; one with an issuer matches that
// issuer, plus issuer-less request attributes unless strict issuer matching
// is on.
func (c *Context) AttributeBag(category, attributeID, issuer, datatype string) (value.Bag, bool, error) {
	k := bagKey{category: category, id: attributeID, issuer: issuer, datatype: datatype}
	if cached, ok := c.bags[k]; ok {
		return cached.bag, cached.found, cached.err
	}
	bag, found, err := c.resolveBag(category, attributeID, issuer, datatype)
	c.bags[k] = cachedBag{bag: bag, found: found, err: err}
	return bag, found, err
}

func (c *Context) resolveBag(category, attributeID, issuer, datatype string) (value.Bag, bool, error) {
	var elems []value.Value
	found := false
	for _, a := range c.attrs[attrKey{category: category, id: attributeID}] {
		if !c.issuerMatches(issuer, a.Issuer) {
			continue
		}
		for _, raw := range a.Values {
			if raw.DataType != datatype {
				continue
			}
			found = true
			v, err := c.datatypes.Parse(datatype, raw.Value)
			if err != nil {
				return value.Bag{}, true, err
			}
			elems = append(elems, v)
		}
	}
	if !found {
		return value.EmptyBag(datatype), false, nil
	}
	bag, err := value.NewBag(datatype, elems...)
	if err != nil {
		return value.Bag{}, true, err
	}
	return bag, true, nil
}

func (c *Context) issuerMatches(wanted, actual string) bool {
	if wanted == "" {
		return true
	}
	if actual == wanted {
		return true
	}
	return actual == "" && !c.strictIssuer
}

// ContentValues extracts content nodes by path and converts each to the
// datatype. The path walks element names from the content root; a final
// "@name" component addresses an attribute node instead of element text.
func (c *Context) ContentValues(category, path, datatype string) (value.Bag, bool, error) {
	root, ok := c.content[category]
	if !ok {
		return value.EmptyBag(datatype), false, nil
	}
	texts, err := selectNodes(root, path)
	if err != nil {
		return value.Bag{}, true, err
	}
	if len(texts) == 0 {
		return value.EmptyBag(datatype), false, nil
	}
	elems := make([]value.Value, len(texts))
	for i, t := range texts {
		v, perr := c.datatypes.Parse(datatype, t)
		if perr != nil {
			return value.Bag{}, true, perr
		}
		elems[i] = v
	}
	bag, err := value.NewBag(datatype, elems...)
	if err != nil {
		return value.Bag{}, true, err
	}
	return bag, true, nil
}

// selectNodes walks the slash-separated path from the root node.
func selectNodes(root *ContentNode, path string) ([]string, error) {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return nil, fmt.Errorf("empty content path")
	}
	segments := strings.Split(path, "/")
	nodes := []*ContentNode{root}
	for i, seg := range segments {
		if seg == "" {
			return nil, fmt.Errorf("malformed content path %q", path)
		}
		if strings.HasPrefix(seg, "@") {
			if i != len(segments)-1 {
				return nil, fmt.Errorf("attribute step %q must be last in path %q", seg, path)
			}
			name := seg[1:]
			var out []string
			for _, n := range nodes {
				if v, ok := n.Attributes[name]; ok {
					out = append(out, v)
				}
			}
			return out, nil
		}
		var next []*ContentNode
		for _, n := range nodes {
			for _, child := range n.Children {
				if child.Name == seg {
					next = append(next, child)
				}
			}
		}
		nodes = next
	}
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Text)
	}
	return out, nil
}

// CachedVariable returns a memoized variable result.
func (c *Context) CachedVariable(id string) (expr.Result, bool) {
	r, ok := c.vars[id]
	return r, ok
}

// CacheVariable memoizes a variable result for the rest of the decision.
func (c *Context) CacheVariable(id string, r expr.Result) {
	c.vars[id] = r
}

// IncludedAttributes returns the request attributes marked IncludeInResult,
// one entry per value in its lexical form, for echoing into the response.
func (c *Context) IncludedAttributes() []IncludedAttribute {
	var out []IncludedAttribute
	for k, attrs := range c.attrs {
		for _, a := range attrs {
			if !a.IncludeInResult {
				continue
			}
			for _, raw := range a.Values {
				out = append(out, IncludedAttribute{
					Category:    k.category,
					AttributeID: a.AttributeID,
					Issuer:      a.Issuer,
					DataType:    raw.DataType,
					Value:       raw.Value,
				})
			}
		}
	}
	return out
}

// IncludedAttribute is one request attribute echoed into the response.
type IncludedAttribute struct {
	Category    string
	AttributeID string
	Issuer      string
	DataType    string
	Value       string
}
