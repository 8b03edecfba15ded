package di

import (
	"reflect"
	"sync"

	"github.com/gocrud/inject/catalog"
)

// Source 实例的来源
type Source string

const (
	SourceConstructor Source = "constructor"
	SourceDefault     Source = "default"
	SourceFactory     Source = "factory"
	SourceRoot        Source = "root"
)

// Entry 实例缓存中的一条记录
type Entry struct {
	Type     reflect.Type
	Name     catalog.Name
	Source   Source
	Instance any
}

// store 单例缓存。byType / byName 可被并发读取；写入只发生在 Inject 期间。
type store struct {
	byType sync.Map // reflect.Type -> any
	byName sync.Map // catalog.Name -> any

	mu      sync.Mutex
	entries []Entry
}

func newStore() *store {
	return &store{}
}

func (s *store) get(t reflect.Type) (any, bool) {
	return s.byType.Load(t)
}

func (s *store) getNamed(n catalog.Name) (any, bool) {
	return s.byName.Load(n)
}

// putType 按类型缓存实例；alias 非空时同时按名称缓存。已存在的条目不会被覆盖。
func (s *store) putType(t reflect.Type, inst any, src Source, alias catalog.Name) bool {
	if _, loaded := s.byType.LoadOrStore(t, inst); loaded {
		return false
	}
	if alias != "" {
		s.byName.LoadOrStore(alias, inst)
	}
	s.record(Entry{Type: t, Name: alias, Source: src, Instance: inst})
	return true
}

// putNamed 仅按名称缓存实例
func (s *store) putNamed(n catalog.Name, t reflect.Type, inst any, src Source) bool {
	if _, loaded := s.byName.LoadOrStore(n, inst); loaded {
		return false
	}
	s.record(Entry{Type: t, Name: n, Source: src, Instance: inst})
	return true
}

func (s *store) record(e Entry) {
	s.mu.Lock()
	s.entries = append(s.entries, e)
	s.mu.Unlock()
}

// snapshot 按缓存顺序返回全部记录
func (s *store) snapshot() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.entries...)
}

func (s *store) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// reset 丢弃全部实例
func (s *store) reset() {
	s.byType.Clear()
	s.byName.Clear()
	s.mu.Lock()
	s.entries = nil
	s.mu.Unlock()
}
