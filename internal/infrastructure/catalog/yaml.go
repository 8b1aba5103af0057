// Package catalog loads the payment method catalog from YAML.
package catalog

import (
	"fmt"
	"os"
	"strings"

	domain "github.com/Zhima-Mochi/acuotaz-checkout/internal/domain/payment"
	"github.com/Zhima-Mochi/acuotaz-checkout/internal/infrastructure/memory"
	"gopkg.in/yaml.v3"
)

// DefaultProcessorID is the processor bound to ACUOTAZ_PM when no catalog file is given.
const DefaultProcessorID = "ACUOTAZ"

type file struct {
	PaymentMethods []methodEntry `yaml:"payment_methods"`
}

type methodEntry struct {
	ID string `yaml:"id"`
	// Processor may be empty: the method then exists without a processor.
	Processor string `yaml:"processor"`
}

// Default returns a catalog holding ACUOTAZ_PM bound to DefaultProcessorID.
func Default() *memory.Catalog {
	return memory.NewCatalog(domain.NewMethod(domain.MethodID, &domain.Processor{ID: DefaultProcessorID}))
}

// LoadFile reads a catalog file.
func LoadFile(path string) (*memory.Catalog, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(content)
}

// Parse decodes a catalog document:
//
//	payment_methods:
//	  - id: ACUOTAZ_PM
//	    processor: ACUOTAZ
func Parse(content []byte) (*memory.Catalog, error) {
	var f file
	if err := yaml.Unmarshal(content, &f); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}

	seen := make(map[string]bool, len(f.PaymentMethods))
	methods := make([]*domain.Method, 0, len(f.PaymentMethods))
	for i, entry := range f.PaymentMethods {
		id := strings.TrimSpace(entry.ID)
		if id == "" {
			return nil, fmt.Errorf("catalog: payment_methods[%d]: id is required", i)
		}
		if seen[id] {
			return nil, fmt.Errorf("catalog: duplicate payment method %q", id)
		}
		seen[id] = true

		var processor *domain.Processor
		if p := strings.TrimSpace(entry.Processor); p != "" {
			processor = &domain.Processor{ID: p}
		}
		methods = append(methods, domain.NewMethod(id, processor))
	}
	return memory.NewCatalog(methods...), nil
}
