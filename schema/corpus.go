package schema

import (
	"fmt"

	"go.uber.org/zap"
)

// Corpus is the classified, read-only set of tables every query runs against.
// It is safe for concurrent use once built.
type Corpus struct {
	datasets []*Dataset
	byName   map[string]*Dataset
}

// NewCorpus classifies each table with the embedded keywords. Tables with no
// columns are skipped and logged; duplicate names get a numeric suffix so
// every dataset keeps a unique provenance key.
func NewCorpus(logger *zap.Logger, tables ...*Table) *Corpus {
	return DefaultKeywords().NewCorpus(logger, tables...)
}

// NewCorpus classifies tables using this keyword table.
func (k *Keywords) NewCorpus(logger *zap.Logger, tables ...*Table) *Corpus {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Corpus{byName: make(map[string]*Dataset)}
	for _, t := range tables {
		if t == nil || len(t.columns) == 0 {
			logger.Warn("Skipping table without columns")
			continue
		}
		desc := k.Classify(t)
		if _, dup := c.byName[desc.Name]; dup {
			for n := 2; ; n++ {
				name := fmt.Sprintf("%s#%d", desc.Name, n)
				if _, taken := c.byName[name]; !taken {
					desc.Name = name
					break
				}
			}
		}
		ds := &Dataset{Table: t, Descriptor: desc}
		c.datasets = append(c.datasets, ds)
		c.byName[desc.Name] = ds

		logger.Debug("Classified dataset",
			zap.String("dataset", desc.Name),
			zap.String("category", string(desc.Category)),
			zap.Int("records", desc.RecordCount),
			zap.Float64("null_ratio", desc.NullRatio))
	}
	return c
}

// Len returns the number of usable datasets.
func (c *Corpus) Len() int { return len(c.datasets) }

// Datasets returns every dataset in load order.
func (c *Corpus) Datasets() []*Dataset {
	out := make([]*Dataset, len(c.datasets))
	copy(out, c.datasets)
	return out
}

// Precipitation returns the precipitation datasets in load order.
func (c *Corpus) Precipitation() []*Dataset { return c.byCategory(CategoryPrecipitation) }

// Production returns the production datasets in load order.
func (c *Corpus) Production() []*Dataset { return c.byCategory(CategoryProduction) }

func (c *Corpus) byCategory(cat Category) []*Dataset {
	var out []*Dataset
	for _, ds := range c.datasets {
		if ds.Descriptor.Category == cat {
			out = append(out, ds)
		}
	}
	return out
}

// Descriptor looks up a dataset's descriptor by provenance key.
func (c *Corpus) Descriptor(name string) (DatasetDescriptor, bool) {
	ds, ok := c.byName[name]
	if !ok {
		return DatasetDescriptor{}, false
	}
	return ds.Descriptor, true
}

// Descriptors returns every descriptor in load order.
func (c *Corpus) Descriptors() []DatasetDescriptor {
	out := make([]DatasetDescriptor, len(c.datasets))
	for i, ds := range c.datasets {
		out[i] = ds.Descriptor
	}
	return out
}
