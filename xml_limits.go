package atom

import (
	"cmp"
	"fmt"

	"github.com/OData/odata.net-sub101/pkg/xmlcursor"
)

const (
	defaultXMLMaxDepth       = 256
	defaultXMLMaxNameEntries = 4096
)

type xmlParseLimits struct {
	maxDepth       int
	maxNameEntries int
}

func resolveXMLParseLimits(maxDepth, maxNameEntries int) (xmlParseLimits, error) {
	if maxDepth < 0 {
		return xmlParseLimits{}, fmt.Errorf("xml max depth must be >= 0")
	}
	if maxNameEntries < 0 {
		return xmlParseLimits{}, fmt.Errorf("xml max name entries must be >= 0")
	}
	return xmlParseLimits{
		maxDepth:       defaultXMLLimit(maxDepth, defaultXMLMaxDepth),
		maxNameEntries: defaultXMLLimit(maxNameEntries, defaultXMLMaxNameEntries),
	}, nil
}

func (l xmlParseLimits) options() xmlcursor.Options {
	return xmlcursor.JoinOptions(
		xmlcursor.MaxDepth(defaultXMLLimit(l.maxDepth, defaultXMLMaxDepth)),
		xmlcursor.MaxNameEntries(defaultXMLLimit(l.maxNameEntries, defaultXMLMaxNameEntries)),
	)
}

func defaultXMLLimit(value, fallback int) int {
	return cmp.Or(value, fallback)
}
