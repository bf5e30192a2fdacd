package glbackend

import (
	"log"
	"os"
	"path/filepath"

	"github.com/mogaika/crane/rendercontext"
	"github.com/mogaika/crane/resource"
)

// DefaultProgramName resolves to program compiled from embedded shaders
const DefaultProgramName = "default"

// Manager loads resources from directory on first request and caches them.
// Failed loads are logged once and cached as missing.
type Manager struct {
	dir string

	programs map[string]*Program
	models   map[string]*resource.Model
	textures map[string]*Texture
	meshes   []*Mesh
	missing  map[string]bool
}

func NewManager(dir string) *Manager {
	return &Manager{
		dir:      dir,
		programs: make(map[string]*Program),
		models:   make(map[string]*resource.Model),
		textures: make(map[string]*Texture),
		missing:  make(map[string]bool),
	}
}

func (m *Manager) path(name string) string {
	return filepath.Join(m.dir, filepath.FromSlash(name))
}

func (m *Manager) markMissing(kind, name string, err error) {
	key := kind + ":" + name
	if !m.missing[key] {
		log.Printf("[resource] Failed to load %s %q: %v", kind, name, err)
	}
	m.missing[key] = true
}

func (m *Manager) isMissing(kind, name string) bool {
	return m.missing[kind+":"+name]
}

func (m *Manager) Program(name string) resource.Program {
	if p, ok := m.programs[name]; ok {
		return p
	}
	if m.isMissing("program", name) {
		return nil
	}

	var p *Program
	var err error
	if name == DefaultProgramName {
		p, err = LoadDefaultProgram()
	} else {
		p, err = LoadProgramFiles(m.path(name))
	}
	if err != nil {
		m.markMissing("program", name, err)
		return nil
	}
	m.programs[name] = p
	return p
}

func (m *Manager) Model(name string) *resource.Model {
	if mdl, ok := m.models[name]; ok {
		return mdl
	}
	if m.isMissing("model", name) {
		return nil
	}

	file := m.path(name + ".gltf")
	if _, err := os.Stat(file); err != nil {
		file = m.path(name + ".glb")
	}
	mdl, err := resource.LoadGLTF(name, file)
	if err != nil {
		m.markMissing("model", name, err)
		return nil
	}
	for _, obj := range mdl.Objects {
		if obj.Geometry != nil {
			mesh := NewMesh(obj.Geometry)
			obj.Mesh = mesh
			m.meshes = append(m.meshes, mesh)
		}
	}
	m.models[name] = mdl
	return mdl
}

func (m *Manager) Texture(name string) resource.Texture {
	if t, ok := m.textures[name]; ok {
		return t
	}
	if m.isMissing("texture", name) {
		return nil
	}

	t, err := LoadTexture(m.path(name + ".png"))
	if err != nil {
		m.markMissing("texture", name, err)
		return nil
	}
	m.textures[name] = t
	return t
}

// Destroy frees every gpu object owned by manager
func (m *Manager) Destroy() {
	for _, p := range m.programs {
		p.Delete()
	}
	for _, mesh := range m.meshes {
		mesh.ClearTempRenderData()
		rendercontext.Forget(mesh)
	}
	for _, t := range m.textures {
		t.ClearTempRenderData()
		rendercontext.Forget(t)
	}
	m.programs = make(map[string]*Program)
	m.models = make(map[string]*resource.Model)
	m.textures = make(map[string]*Texture)
	m.meshes = nil
}
