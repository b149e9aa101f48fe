package icp

import "strings"

// TransformFunc returns the selector that should replace selector in the
// output stylesheet. prefixedSelector is the naive form, prefix + " " +
// selector. Within this module it is always computed from prefix and
// selector, never taken from outside.
type TransformFunc func(prefix, selector, prefixedSelector string) string

/*
DefaultTransform is the scoping rule applied to every selector. The first
matching case wins:

  - "html" and "body" are root-level and are returned unchanged.
  - A selector that already starts with the prefix is returned unchanged,
    so applying the rule twice is the same as applying it once.
  - Any other class selector is joined to the prefix with a descendant
    combinator (".a" -> ".scope .a", never ".scope.a").
  - Everything else (elements, attributes, pseudos) gets prefixedSelector.
*/
func DefaultTransform(prefix, selector, prefixedSelector string) string {
	if selector == "html" || selector == "body" {
		return selector
	}
	if strings.HasPrefix(selector, prefix) {
		return selector
	}
	if strings.HasPrefix(selector, ".") {
		return prefix + " " + selector
	}
	return prefixedSelector
}

// TransformSelector runs DefaultTransform with the naive form computed here.
func TransformSelector(prefix, selector string) string {
	return DefaultTransform(prefix, selector, naivePrefix(prefix, selector))
}

func naivePrefix(prefix, selector string) string {
	return prefix + " " + selector
}

// TransformSelector rewrites a single selector using the configured
// TransformFunc, unless the selector is excluded.
func (c *Config) TransformSelector(selector string) string {
	if c.getIsExcludedSelector(selector) {
		return selector
	}
	return c.transform(c.Prefix, selector, naivePrefix(c.Prefix, selector))
}

func (c *Config) getIsExcludedSelector(selector string) bool {
	if c.SkipGlobalSelectors && strings.HasPrefix(selector, globalSelectorPrefix) {
		return true
	}
	if _, ok := c.excludeSet[selector]; ok {
		return true
	}
	for _, re := range c.ExcludePatterns {
		if re != nil && re.MatchString(selector) {
			return true
		}
	}
	return false
}
