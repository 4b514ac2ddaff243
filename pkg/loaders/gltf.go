package loaders

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/df07/go-scene-viewer/pkg/log"
	"github.com/df07/go-scene-viewer/pkg/scene"
)

// maxNodeDepth bounds recursion through the glTF node hierarchy. Valid
// documents are forests; anything deeper than this is treated as a cycle.
const maxNodeDepth = 256

// Source loads a named asset and returns its root node
type Source interface {
	Load(ctx context.Context, name string) (*scene.Node, error)
}

// ProgressFunc receives the number of bytes read so far and the total size,
// or -1 if the size is unknown
type ProgressFunc func(name string, loaded, total int64)

// GLTFLoader loads glTF 2.0 assets (.glb or .gltf) from a directory or an
// http(s) base URL
type GLTFLoader struct {
	Base       string       // Directory or http(s) URL that names are resolved against
	Client     *http.Client // Used for http(s) bases
	OnProgress ProgressFunc // Optional
	Logger     log.Logger
}

// NewGLTFLoader creates a loader resolving names against base
func NewGLTFLoader(base string) *GLTFLoader {
	return &GLTFLoader{
		Base:   base,
		Client: http.DefaultClient,
		Logger: log.New("loader"),
	}
}

// Load fetches and decodes the named asset. The returned node is a group
// named after the asset holding the document's default scene.
func (l *GLTFLoader) Load(ctx context.Context, name string) (*scene.Node, error) {
	doc, err := l.read(ctx, name)
	if err != nil {
		return nil, &LoadError{Asset: name, Err: err}
	}

	root, err := Convert(name, doc)
	if err != nil {
		return nil, &LoadError{Asset: name, Err: err}
	}

	l.Logger.Debugf("loaded %s: %d meshes, %d triangles", name, root.Count(scene.KindMesh), root.Triangles())
	return root, nil
}

// read resolves name and decodes the document it points at
func (l *GLTFLoader) read(ctx context.Context, name string) (*gltf.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if isURL(l.Base) || isURL(name) {
		return l.readURL(ctx, name)
	}

	p := name
	if l.Base != "" && !filepath.IsAbs(name) {
		p = filepath.Join(l.Base, name)
	}

	// Text glTF may reference sibling files, which only the path based
	// opener resolves
	if strings.EqualFold(filepath.Ext(p), ".gltf") {
		doc, err := gltf.Open(p)
		if err != nil {
			return nil, err
		}
		if fi, statErr := os.Stat(p); statErr == nil {
			l.progress(name, fi.Size(), fi.Size())
		}
		return doc, nil
	}

	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	total := int64(-1)
	if fi, err := f.Stat(); err == nil {
		total = fi.Size()
	}
	return l.decode(name, f, total)
}

// readURL fetches a self-contained document over http(s)
func (l *GLTFLoader) readURL(ctx context.Context, name string) (*gltf.Document, error) {
	target, err := resolveURL(l.Base, name)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: %s", target, resp.Status)
	}
	return l.decode(name, resp.Body, resp.ContentLength)
}

func (l *GLTFLoader) decode(name string, r io.Reader, total int64) (*gltf.Document, error) {
	if l.OnProgress != nil {
		r = &progressReader{r: r, total: total, report: func(n, t int64) { l.OnProgress(name, n, t) }}
	}
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return doc, nil
}

func (l *GLTFLoader) progress(name string, loaded, total int64) {
	if l.OnProgress != nil {
		l.OnProgress(name, loaded, total)
	}
}

// Convert builds a scene subtree from the document's default scene, or its
// first scene if none is marked default
func Convert(name string, doc *gltf.Document) (*scene.Node, error) {
	if len(doc.Scenes) == 0 {
		return nil, errors.New("document has no scenes")
	}
	sceneIndex := 0
	if doc.Scene != nil {
		sceneIndex = int(*doc.Scene)
	}
	if sceneIndex < 0 || sceneIndex >= len(doc.Scenes) {
		return nil, fmt.Errorf("default scene %d out of range", sceneIndex)
	}

	root := scene.NewGroup(name)
	c := &converter{doc: doc, meshes: make(map[int][]*scene.Mesh)}
	for _, idx := range doc.Scenes[sceneIndex].Nodes {
		child, err := c.node(int(idx), 0)
		if err != nil {
			return nil, err
		}
		root.Add(child)
	}
	return root, nil
}

// converter caches converted meshes so instanced glTF meshes share data
type converter struct {
	doc    *gltf.Document
	meshes map[int][]*scene.Mesh
}

func (c *converter) node(idx, depth int) (*scene.Node, error) {
	if depth > maxNodeDepth {
		return nil, errors.New("node hierarchy too deep or cyclic")
	}
	if idx < 0 || idx >= len(c.doc.Nodes) {
		return nil, fmt.Errorf("node %d out of range", idx)
	}
	src := c.doc.Nodes[idx]

	n := scene.NewGroup(src.Name)
	n.Transform = nodeTransform(src)

	if src.Mesh != nil {
		meshIdx := int(*src.Mesh)
		prims, err := c.mesh(meshIdx)
		if err != nil {
			return nil, fmt.Errorf("mesh %d: %w", meshIdx, err)
		}
		if len(prims) == 1 {
			n.Kind = scene.KindMesh
			n.Mesh = prims[0]
		} else {
			for i, m := range prims {
				n.Add(scene.NewMeshNode(fmt.Sprintf("%s#%d", src.Name, i), m))
			}
		}
	}

	for _, childIdx := range src.Children {
		child, err := c.node(int(childIdx), depth+1)
		if err != nil {
			return nil, err
		}
		n.Add(child)
	}
	return n, nil
}

// mesh converts the triangle primitives of a glTF mesh. Points and lines are
// skipped.
func (c *converter) mesh(idx int) ([]*scene.Mesh, error) {
	if cached, ok := c.meshes[idx]; ok {
		return cached, nil
	}
	if idx < 0 || idx >= len(c.doc.Meshes) {
		return nil, fmt.Errorf("out of range")
	}

	var out []*scene.Mesh
	for i, prim := range c.doc.Meshes[idx].Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			continue
		}
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			return nil, fmt.Errorf("primitive %d: missing POSITION", i)
		}
		if int(posIdx) < 0 || int(posIdx) >= len(c.doc.Accessors) {
			return nil, fmt.Errorf("primitive %d: POSITION accessor %d out of range", i, posIdx)
		}
		positions, err := modeler.ReadPosition(c.doc, c.doc.Accessors[posIdx], nil)
		if err != nil {
			return nil, fmt.Errorf("primitive %d positions: %w", i, err)
		}

		var indices []uint32
		if prim.Indices != nil {
			if int(*prim.Indices) < 0 || int(*prim.Indices) >= len(c.doc.Accessors) {
				return nil, fmt.Errorf("primitive %d: indices accessor %d out of range", i, *prim.Indices)
			}
			indices, err = modeler.ReadIndices(c.doc, c.doc.Accessors[*prim.Indices], nil)
			if err != nil {
				return nil, fmt.Errorf("primitive %d indices: %w", i, err)
			}
		}

		verts := make([]mgl32.Vec3, len(positions))
		for j, p := range positions {
			verts[j] = mgl32.Vec3{p[0], p[1], p[2]}
		}
		m := scene.NewMesh(verts, indices)

		if prim.Material != nil {
			if int(*prim.Material) < 0 || int(*prim.Material) >= len(c.doc.Materials) {
				return nil, fmt.Errorf("primitive %d: material %d out of range", i, *prim.Material)
			}
			mat := c.doc.Materials[*prim.Material]
			m.DoubleSided = mat.DoubleSided
			if pbr := mat.PBRMetallicRoughness; pbr != nil && pbr.BaseColorFactor != nil {
				f := pbr.BaseColorFactor
				m.Color = mgl32.Vec4{float32(f[0]), float32(f[1]), float32(f[2]), float32(f[3])}
			}
		}
		out = append(out, m)
	}

	c.meshes[idx] = out
	return out, nil
}

// nodeTransform returns the node's local matrix, from its explicit matrix if
// set or else from translation, rotation and scale
func nodeTransform(n *gltf.Node) mgl32.Mat4 {
	var m mgl32.Mat4
	for i := range n.Matrix {
		m[i] = float32(n.Matrix[i])
	}
	if m != (mgl32.Mat4{}) && m != mgl32.Ident4() {
		return m
	}

	t := mgl32.Translate3D(float32(n.Translation[0]), float32(n.Translation[1]), float32(n.Translation[2]))

	r := mgl32.QuatIdent()
	q := mgl32.Quat{W: float32(n.Rotation[3]), V: mgl32.Vec3{float32(n.Rotation[0]), float32(n.Rotation[1]), float32(n.Rotation[2])}}
	if q.Len() > 0 {
		r = q.Normalize()
	}

	s := mgl32.Vec3{float32(n.Scale[0]), float32(n.Scale[1]), float32(n.Scale[2])}
	if s == (mgl32.Vec3{}) {
		s = mgl32.Vec3{1, 1, 1}
	}

	return t.Mul4(r.Mat4()).Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// resolveURL resolves name relative to base, treating base as a directory
func resolveURL(base, name string) (string, error) {
	if isURL(name) || base == "" {
		return name, nil
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	u.Path = path.Join(u.Path, name)
	return u.String(), nil
}

// progressReader reports cumulative bytes read
type progressReader struct {
	r      io.Reader
	read   int64
	total  int64
	report func(loaded, total int64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		p.report(p.read, p.total)
	}
	return n, err
}
