package router

import (
	"sort"
	"sync"

	"github.com/gin-gonic/gin"
)

// RootModule 挂在引擎根路径、不走 /api/v1 信封的接口
type RootModule interface{ MountRoot(gin.IRouter) }

// APIModule 模块可选择实现其中一个或多个接口；authed 分组已过 AuthJWT
type APIModule interface {
	MountAPI(pub, authed *gin.RouterGroup)
}
type AdminModule interface {
	MountAdmin(pub, authed *gin.RouterGroup)
}

// 可选：实现该接口可控制挂载顺序（数值越小越先挂）
// 不实现则默认 100
type prioritizer interface{ Priority() int }

type Registry struct {
	mu        sync.RWMutex
	rootMods  []RootModule
	apiMods   []APIModule
	adminMods []AdminModule
}

func NewRegistry(mods ...any) *Registry {
	r := &Registry{}
	for _, m := range mods {
		r.Register(m)
	}
	return r
}

// Register 统一注册入口：根据类型断言分发
func (r *Registry) Register(mod any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := mod.(RootModule); ok {
		r.rootMods = append(r.rootMods, m)
	}
	if m, ok := mod.(APIModule); ok {
		r.apiMods = append(r.apiMods, m)
	}
	if m, ok := mod.(AdminModule); ok {
		r.adminMods = append(r.adminMods, m)
	}
}

func (r *Registry) MountRoot(e gin.IRouter) {
	r.mu.RLock()
	mods := append([]RootModule(nil), r.rootMods...)
	r.mu.RUnlock()
	sortByPriority(mods)
	for _, m := range mods {
		m.MountRoot(e)
	}
}

// MountAPI 在 /api/v1 上挂载所有已注册的 API 模块
func (r *Registry) MountAPI(pub, authed *gin.RouterGroup) {
	r.mu.RLock()
	mods := append([]APIModule(nil), r.apiMods...)
	r.mu.RUnlock()
	sortByPriority(mods)
	for _, m := range mods {
		m.MountAPI(pub, authed)
	}
}

// MountAdmin 在 /admin/v1 上挂载所有已注册的 Admin 模块
func (r *Registry) MountAdmin(pub, authed *gin.RouterGroup) {
	r.mu.RLock()
	mods := append([]AdminModule(nil), r.adminMods...)
	r.mu.RUnlock()
	sortByPriority(mods)
	for _, m := range mods {
		m.MountAdmin(pub, authed)
	}
}

func sortByPriority[T any](mods []T) {
	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
