// Package epub reads and writes EPUB containers: the zip envelope, the
// META-INF/container.xml pointer, and the package document. It assembles the
// ProcessingContext the resolution engine works on and serializes the
// mutated documents back.
package epub

import (
	"archive/zip"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"

	"github.com/beevik/etree"
	"github.com/sourcegraph/conc/pool"

	"github.com/crdjm/epub-accessibility-fixer/pkg/dom"
	"github.com/crdjm/epub-accessibility-fixer/pkg/models"
)

const containerPath = "META-INF/container.xml"

// entry is one raw zip member, kept so unmodified members round-trip
// byte-identical.
type entry struct {
	name   string
	data   []byte
	method uint16
}

// Container is an EPUB archive loaded into memory.
type Container struct {
	Path    string
	OpfPath string

	entries []entry
	byName  map[string]int
}

// Open reads the archive and resolves the package document path from
// META-INF/container.xml.
func Open(path string) (*Container, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer r.Close()

	c := &Container{Path: path, byName: make(map[string]int)}
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open entry %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read entry %s: %w", f.Name, err)
		}
		c.byName[f.Name] = len(c.entries)
		c.entries = append(c.entries, entry{name: f.Name, data: data, method: f.Method})
	}

	opf, err := c.resolveOpfPath()
	if err != nil {
		return nil, err
	}
	c.OpfPath = opf
	return c, nil
}

func (c *Container) resolveOpfPath() (string, error) {
	data, ok := c.bytes(containerPath)
	if !ok {
		return "", fmt.Errorf("%s: missing %s", c.Path, containerPath)
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return "", fmt.Errorf("parse %s: %w", containerPath, err)
	}
	rootfile := doc.FindElement("//rootfile")
	if rootfile == nil {
		return "", fmt.Errorf("%s: no rootfile element", containerPath)
	}
	full := rootfile.SelectAttrValue("full-path", "")
	if full == "" {
		return "", fmt.Errorf("%s: rootfile has no full-path", containerPath)
	}
	return full, nil
}

func (c *Container) bytes(name string) ([]byte, bool) {
	i, ok := c.byName[name]
	if !ok {
		return nil, false
	}
	return c.entries[i].data, true
}

// Load parses the package document and every content entry into a
// ProcessingContext. XML entries parse in parallel; assembly stays in
// container order so the context is deterministic.
func (c *Container) Load() (*models.ProcessingContext, error) {
	pc := models.NewProcessingContext(c.Path)
	pc.OpfPath = c.OpfPath

	opfData, ok := c.bytes(c.OpfPath)
	if !ok {
		return nil, fmt.Errorf("%s: package document %s not in archive", c.Path, c.OpfPath)
	}
	opfDoc, err := dom.Parse(c.OpfPath, opfData)
	if err != nil {
		return nil, err
	}
	pc.AddContent(&models.ContentFile{
		Path:      c.OpfPath,
		MediaType: "application/oebps-package+xml",
		Doc:       opfDoc,
	})
	readMetadata(opfDoc, &pc.Metadata)

	items := manifestItems(opfDoc, c.OpfPath)

	// Parse XHTML entries concurrently; everything else loads as raw bytes.
	docs := make([]*dom.Document, len(items))
	var mu sync.Mutex
	var firstErr error
	p := pool.New().WithMaxGoroutines(runtime.NumCPU())
	for i, item := range items {
		if item.mediaType != "application/xhtml+xml" {
			continue
		}
		p.Go(func() {
			data, ok := c.bytes(item.href)
			if !ok {
				return
			}
			doc, err := dom.Parse(item.href, data)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			docs[i] = doc
		})
	}
	p.Wait()
	if firstErr != nil {
		return nil, firstErr
	}

	for i, item := range items {
		data, ok := c.bytes(item.href)
		if !ok {
			// Manifest entries missing from the archive are the
			// validator's problem, not the loader's.
			continue
		}
		cf := &models.ContentFile{Path: item.href, MediaType: item.mediaType}
		if docs[i] != nil {
			cf.Doc = docs[i]
		} else {
			cf.Data = data
		}
		pc.AddContent(cf)
	}
	return pc, nil
}

type manifestItem struct {
	href      string
	mediaType string
}

// manifestItems resolves manifest hrefs against the OPF directory.
func manifestItems(opf *dom.Document, opfPath string) []manifestItem {
	dir := ""
	if i := strings.LastIndexByte(opfPath, '/'); i >= 0 {
		dir = opfPath[:i+1]
	}
	var items []manifestItem
	for _, el := range opf.FindAll("//manifest/item") {
		href := el.SelectAttrValue("href", "")
		if href == "" {
			continue
		}
		items = append(items, manifestItem{
			href:      dir + href,
			mediaType: el.SelectAttrValue("media-type", ""),
		})
	}
	return items
}

func readMetadata(opf *dom.Document, meta *models.Metadata) {
	get := func(path string) string {
		if el := opf.Find(path); el != nil {
			return strings.TrimSpace(el.Text())
		}
		return ""
	}
	meta.Title = get("//metadata/dc:title")
	meta.Language = get("//metadata/dc:language")
	meta.Identifier = get("//metadata/dc:identifier")
	meta.Creator = get("//metadata/dc:creator")
}
