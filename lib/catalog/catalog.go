// Package catalog keeps a searchable record of every emitted part bundle.
package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/blevesearch/bleve"
	"github.com/boltdb/bolt"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/xoviat/eagle2fritzing/lib/bundle"
	"github.com/xoviat/eagle2fritzing/lib/fritzing"
	"github.com/xoviat/eagle2fritzing/lib/mapper"
)

var (
	partsBucket     = []byte("parts")
	unindexedBucket = []byte("unindexed")
)

// Record describes one emitted bundle.
type Record struct {
	ID          string                    `msgpack:"id"`
	Title       string                    `msgpack:"title"`
	Library     string                    `msgpack:"library"`
	DeviceSet   string                    `msgpack:"deviceset"`
	Device      string                    `msgpack:"device"`
	Variant     string                    `msgpack:"variant"`
	Package     string                    `msgpack:"package"`
	Family      string                    `msgpack:"family"`
	Source      string                    `msgpack:"source"`
	Dir         string                    `msgpack:"dir"`
	Connectors  []mapper.ConnectorMapping `msgpack:"connectors"`
	Diagnostics int                       `msgpack:"diagnostics"`
}

// document is what bleve indexes for a record.
type document struct {
	Title     string
	Library   string
	DeviceSet string
	Variant   string
	Package   string
	Family    string
	Pins      string
}

func (r *Record) document() document {
	var pins []string
	for _, c := range r.Connectors {
		pins = append(pins, c.Name)
	}
	return document{
		Title:     r.Title,
		Library:   r.Library,
		DeviceSet: r.DeviceSet,
		Variant:   r.Variant,
		Package:   r.Package,
		Family:    r.Family,
		Pins:      strings.Join(pins, " "),
	}
}

// NewRecord describes an emitted bundle produced from part.
func NewRecord(source string, part *mapper.Part, b *bundle.PartBundle) *Record {
	r := &Record{
		ID:          b.ModuleID,
		Title:       b.Title(),
		Library:     part.Library,
		DeviceSet:   part.DeviceSet,
		Device:      part.Device,
		Variant:     part.Variant,
		Source:      source,
		Dir:         b.Dir,
		Connectors:  part.Connectors,
		Diagnostics: len(b.Diagnostics),
	}

	if props := b.Module.Child(fritzing.KindProperties); props != nil {
		for _, p := range props.ChildrenOf(fritzing.KindProperty) {
			switch p.AttrOr("name", "") {
			case "package":
				r.Package = p.Text
			case "family":
				r.Family = p.Text
			}
		}
	}

	return r
}

type Catalog struct {
	root  string
	db    *bolt.DB
	index bleve.Index
}

func marshal(v interface{}) ([]byte, error) {
	return msgpack.Marshal(v)
}

func unmarshal(data []byte, v interface{}) error {
	return msgpack.Unmarshal(data, v)
}

/*
	Open creates or opens the catalog in root. Records whose indexing was
	interrupted are indexed again.
*/
func Open(root string) (*Catalog, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}

	db, err := bolt.Open(filepath.Join(root, "parts.db"), 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(partsBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(unindexedBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	var index bleve.Index
	ipath := filepath.Join(root, "parts.bleve")
	if _, serr := os.Stat(ipath); errors.Is(serr, fs.ErrNotExist) {
		index, err = bleve.New(ipath, bleve.NewIndexMapping())
	} else {
		index, err = bleve.Open(ipath)
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open catalog index: %w", err)
	}

	c := &Catalog{
		root:  root,
		db:    db,
		index: index,
	}
	if err := c.reindex(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Catalog) Close() error {
	ierr := c.index.Close()
	if err := c.db.Close(); err != nil {
		return err
	}
	return ierr
}

/*
	Put stores r and indexes it. The id stays in the unindexed bucket until
	the index has it.
*/
func (c *Catalog) Put(r *Record) error {
	data, err := marshal(r)
	if err != nil {
		return err
	}

	if err := c.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(partsBucket).Put([]byte(r.ID), data); err != nil {
			return err
		}
		return tx.Bucket(unindexedBucket).Put([]byte(r.ID), []byte(""))
	}); err != nil {
		return err
	}

	return c.indexRecord(r)
}

func (c *Catalog) indexRecord(r *Record) error {
	if err := c.index.Index(r.ID, r.document()); err != nil {
		return err
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(unindexedBucket).Delete([]byte(r.ID))
	})
}

func (c *Catalog) reindex() error {
	var pending []*Record
	if err := c.db.View(func(tx *bolt.Tx) error {
		parts := tx.Bucket(partsBucket)
		return tx.Bucket(unindexedBucket).ForEach(func(k, _ []byte) error {
			data := parts.Get(k)
			if data == nil {
				return nil
			}
			r := &Record{}
			if err := unmarshal(data, r); err != nil {
				return err
			}
			pending = append(pending, r)
			return nil
		})
	}); err != nil {
		return err
	}

	for _, r := range pending {
		if err := c.indexRecord(r); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the record for id, or nil when there is none.
func (c *Catalog) Get(id string) (*Record, error) {
	var r *Record
	err := c.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(partsBucket).Get([]byte(id))
		if data == nil {
			return nil
		}
		r = &Record{}
		return unmarshal(data, r)
	})
	return r, err
}

// All returns every record ordered by title.
func (c *Catalog) All() ([]*Record, error) {
	var out []*Record
	err := c.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(partsBucket).ForEach(func(_, data []byte) error {
			r := &Record{}
			if err := unmarshal(data, r); err != nil {
				return err
			}
			out = append(out, r)
			return nil
		})
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, err
}

/*
	Search runs a bleve query string ("resistor", "Package:0805",
	"+Family:mcu Pins:P1") and returns at most n records, best match first.
*/
func (c *Catalog) Search(q string, n int) ([]*Record, error) {
	req := bleve.NewSearchRequestOptions(bleve.NewQueryStringQuery(q), n, 0, false)
	result, err := c.index.Search(req)
	if err != nil {
		return nil, err
	}

	var out []*Record
	for _, hit := range result.Hits {
		r, err := c.Get(hit.ID)
		if err != nil {
			return nil, err
		}
		if r != nil {
			out = append(out, r)
		}
	}
	return out, nil
}
