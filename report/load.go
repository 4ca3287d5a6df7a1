package report

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/beevik/etree"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"rptcore/common"
	"rptcore/layout"
)

// Report definition is a small XML document:
//
//	<report name="...">
//	  <band name="..." height="20pt" pagebreak-before="true" column-break="false"/>
//	  <group name="...">...</group>
//	  <crosstab name="..." detail-mode="first|last|all" header-height="12pt">
//	    <columns group="year" title="Year">
//	      <value label="2020">
//	        <columns group="quarter" title="Quarter">...</columns>
//	        <item label="..." height="10pt"/>
//	        <summary label="..." height="10pt"/>
//	      </value>
//	    </columns>
//	  </crosstab>
//	</report>
//
// Unknown elements are reported and skipped, malformed attributes are
// errors.

// LoadFile reads report definition from file.
func LoadFile(path string, log *zap.Logger) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open report definition: %w", err)
	}
	defer f.Close()
	return Load(f, log)
}

// Load reads and parses report definition.
func Load(r io.Reader, log *zap.Logger) (*Report, error) {
	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		ValidateInput: false,
		Permissive:    false,
	}
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("unable to read report definition: %w", err)
	}
	return Parse(doc, log)
}

// Parse walks the etree DOM and builds report definition.
func Parse(doc *etree.Document, log *zap.Logger) (*Report, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil document")
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("document has no root element")
	}
	if root.Tag != "report" {
		return nil, fmt.Errorf("unexpected root element %q", root.Tag)
	}

	rep := &Report{Name: root.SelectAttrValue("name", "")}
	if len(rep.Name) == 0 {
		return nil, fmt.Errorf("report name is required")
	}
	children, err := parseBody(root, rep, log)
	if err != nil {
		return nil, fmt.Errorf("report %q: %w", rep.Name, err)
	}
	rep.Children = children
	return rep, nil
}

func parseBody(el *etree.Element, rep *Report, log *zap.Logger) ([]Node, error) {
	var nodes []Node
	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "band":
			band, err := parseBand(child)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, band)
		case "group":
			group := &Group{Name: child.SelectAttrValue("name", ""), Index: rep.groups}
			rep.groups++
			children, err := parseBody(child, rep, log)
			if err != nil {
				return nil, fmt.Errorf("group %q: %w", group.Name, err)
			}
			group.Children = children
			nodes = append(nodes, group)
		case "crosstab":
			ct, err := parseCrosstab(child, log)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, ct)
		default:
			log.Warn("Unexpected tag in report body, ignoring", zap.String("parent", el.Tag), zap.String("tag", child.Tag))
		}
	}
	return nodes, nil
}

func parseBand(el *etree.Element) (*Band, error) {
	band := &Band{Name: el.SelectAttrValue("name", "")}

	var errs error
	var err error
	if band.Height, err = lengthAttr(el, "height"); err != nil {
		errs = multierr.Append(errs, err)
	}
	if band.PagebreakBefore, err = boolAttr(el, "pagebreak-before"); err != nil {
		errs = multierr.Append(errs, err)
	}
	if band.ColumnBreak, err = boolAttr(el, "column-break"); err != nil {
		errs = multierr.Append(errs, err)
	}
	if errs != nil {
		return nil, fmt.Errorf("band %q: %w", band.Name, errs)
	}
	return band, nil
}

func parseCrosstab(el *etree.Element, log *zap.Logger) (*Crosstab, error) {
	ct := &Crosstab{Name: el.SelectAttrValue("name", "")}

	var errs error
	if attr := el.SelectAttr("detail-mode"); attr != nil {
		mode, err := common.ParseDetailMode(attr.Value)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("attribute detail-mode: %w", err))
		} else {
			ct.DetailMode = &mode
		}
	}
	var err error
	if ct.HeaderHeight, err = lengthAttr(el, "header-height"); err != nil {
		errs = multierr.Append(errs, err)
	}
	if errs != nil {
		return nil, fmt.Errorf("crosstab %q: %w", ct.Name, errs)
	}

	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "columns":
			values, err := parseColumns(child, ct, 0, log)
			if err != nil {
				return nil, fmt.Errorf("crosstab %q: %w", ct.Name, err)
			}
			ct.Columns = append(ct.Columns, values...)
		default:
			log.Warn("Unexpected tag in crosstab, ignoring", zap.String("crosstab", ct.Name), zap.String("tag", child.Tag))
		}
	}
	return ct, nil
}

func parseColumns(el *etree.Element, ct *Crosstab, level int, log *zap.Logger) ([]*Value, error) {
	lv := Level{Group: el.SelectAttrValue("group", ""), Title: el.SelectAttrValue("title", "")}
	switch {
	case level == len(ct.Levels):
		ct.Levels = append(ct.Levels, lv)
	case ct.Levels[level] != lv:
		return nil, fmt.Errorf("column level %d redefined as %q (%q), was %q (%q)",
			level, lv.Group, lv.Title, ct.Levels[level].Group, ct.Levels[level].Title)
	}

	var values []*Value
	for _, child := range el.ChildElements() {
		if child.Tag != "value" {
			log.Warn("Unexpected tag in crosstab columns, ignoring", zap.String("group", lv.Group), zap.String("tag", child.Tag))
			continue
		}
		v, err := parseValue(child, ct, level, log)
		if err != nil {
			return nil, fmt.Errorf("%s %q: %w", lv.Group, v.Label, err)
		}
		values = append(values, v)
	}
	return values, nil
}

func parseValue(el *etree.Element, ct *Crosstab, level int, log *zap.Logger) (*Value, error) {
	v := &Value{Label: el.SelectAttrValue("label", "")}
	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "columns":
			values, err := parseColumns(child, ct, level+1, log)
			if err != nil {
				return v, err
			}
			v.Columns = append(v.Columns, values...)
		case "item", "summary":
			h, err := lengthAttr(child, "height")
			if err != nil {
				return v, fmt.Errorf("%s: %w", child.Tag, err)
			}
			it := Item{Label: child.SelectAttrValue("label", ""), Height: h}
			if child.Tag == "item" {
				v.Items = append(v.Items, it)
			} else {
				v.Summaries = append(v.Summaries, it)
			}
		default:
			log.Warn("Unexpected tag in column value, ignoring", zap.String("value", v.Label), zap.String("tag", child.Tag))
		}
	}
	return v, nil
}

func lengthAttr(el *etree.Element, name string) (int64, error) {
	attr := el.SelectAttr(name)
	if attr == nil {
		return 0, nil
	}
	v, err := layout.ParseLength(attr.Value)
	if err != nil {
		return 0, fmt.Errorf("attribute %s: %w", name, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("attribute %s: negative length %q", name, attr.Value)
	}
	return v, nil
}

func boolAttr(el *etree.Element, name string) (bool, error) {
	attr := el.SelectAttr(name)
	if attr == nil {
		return false, nil
	}
	v, err := strconv.ParseBool(attr.Value)
	if err != nil {
		return false, fmt.Errorf("attribute %s: %w", name, err)
	}
	return v, nil
}
