package config

import (
	"sync"

	"github.com/chungjuroad/tripkit/catalog"
	"github.com/chungjuroad/tripkit/core"
	"github.com/chungjuroad/tripkit/feature"
	"github.com/chungjuroad/tripkit/similarity"
)

// Runtime 承载配置文件表达不了的运行期依赖：相似度矩阵、评分数据、
// 目的地目录等。builders 构建节点时从这里取。
//
// 应用在加载配置前注入一次：
//
//	config.SetRuntime(&config.Runtime{
//	    Matrix:  matrix,
//	    Ratings: ratings,
//	    Catalog: cat,
//	})
type Runtime struct {
	Matrix   *similarity.Matrix
	Ratings  core.RatingStore
	Catalog  *catalog.Catalog
	Store    core.Store
	Provider feature.Provider
}

var (
	runtime   *Runtime
	runtimeMu sync.RWMutex
)

// SetRuntime 注入运行期依赖。通常在进程启动时调用一次。
func SetRuntime(rt *Runtime) {
	runtimeMu.Lock()
	defer runtimeMu.Unlock()
	runtime = rt
}

// GetRuntime 返回当前注入的运行期依赖；未注入时返回空 Runtime（字段全 nil）。
func GetRuntime() *Runtime {
	runtimeMu.RLock()
	defer runtimeMu.RUnlock()
	if runtime == nil {
		return &Runtime{}
	}
	return runtime
}
