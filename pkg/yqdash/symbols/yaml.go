package symbols

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile reads symbol lists from a YAML file, or from every .yaml/.yml
// file below a directory. List names from a directory are prefixed with the
// file's relative path.
//
// The format is a "symbols" tree of leaves and named groups:
//
//	symbols:
//	  - sym: AAPL
//	  - name: Funds
//	    symbols:
//	      - sym: SPY
//	      - VTI
func LoadFile(path string) ([]List, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		lists, err := readYAML(path)
		if err != nil {
			return nil, err
		}
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		for i := range lists {
			if lists[i].Name == "" {
				lists[i].Name = base
			}
		}
		return lists, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		if !d.IsDir() && (ext == ".yaml" || ext == ".yml") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	var all []List
	for _, full := range files {
		lists, err := readYAML(full)
		if err != nil {
			return nil, err
		}
		rel, err := filepath.Rel(path, full)
		if err != nil {
			rel = filepath.Base(full)
		}
		prefix := filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel)))
		for i := range lists {
			if lists[i].Name == "" {
				lists[i].Name = prefix
			} else {
				lists[i].Name = prefix + "/" + lists[i].Name
			}
		}
		all = append(all, lists...)
	}
	return all, nil
}

func readYAML(path string) ([]List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lists, err := parseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lists, nil
}

type node struct {
	Sym     string `yaml:"sym"`
	Name    string `yaml:"name"`
	Symbols []item `yaml:"symbols"`
}

// item is either a bare symbol string or a node.
type item struct {
	node
}

func (i *item) UnmarshalYAML(v *yaml.Node) error {
	if v.Kind == yaml.ScalarNode {
		i.Sym = v.Value
		return nil
	}
	return v.Decode(&i.node)
}

func parseYAML(data []byte) ([]List, error) {
	var root node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Symbols == nil {
		return nil, fmt.Errorf("invalid yaml: missing 'symbols'")
	}
	var lists []List
	var walk func(items []item, path []string)
	walk = func(items []item, path []string) {
		var syms []string
		for _, it := range items {
			if it.Symbols != nil {
				next := append([]string(nil), path...)
				if it.Name != "" {
					next = append(next, it.Name)
				}
				walk(it.Symbols, next)
				continue
			}
			if it.Sym != "" {
				syms = append(syms, it.Sym)
			}
		}
		if len(syms) > 0 {
			lists = append(lists, List{Name: strings.Join(path, "/"), Symbols: normalize(syms)})
		}
	}
	walk(root.Symbols, nil)
	return lists, nil
}
