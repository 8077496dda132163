package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/blues/takeover/internal/config"
	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter 按客户端 IP 限流。跟踪的客户端数量有上限，超出时淘汰最久未访问的；
// 空闲客户端由调用方定期执行 Cleanup 清理。
type RateLimiter struct {
	mu       sync.Mutex
	visitors *lru.Cache[string, *visitor]
	limit    rate.Limit
	burst    int
	idle     time.Duration
	clockNow func() time.Time
}

// NewRateLimiter 根据配置创建限流器
func NewRateLimiter(cfg config.RateLimitConfig) (*RateLimiter, error) {
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = 10000
	}
	cache, err := lru.New[string, *visitor](capacity)
	if err != nil {
		return nil, err
	}

	perSecond := cfg.RequestsPerMinute / 60.0
	if perSecond <= 0 {
		perSecond = 1
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	idle := time.Duration(cfg.IdleSeconds) * time.Second
	if idle <= 0 {
		idle = 5 * time.Minute
	}

	return &RateLimiter{
		visitors: cache,
		limit:    rate.Limit(perSecond),
		burst:    burst,
		idle:     idle,
		clockNow: time.Now,
	}, nil
}

// SetClock 替换时间源
func (r *RateLimiter) SetClock(now func() time.Time) {
	r.mu.Lock()
	r.clockNow = now
	r.mu.Unlock()
}

// Allow 判断该客户端此刻是否允许请求
func (r *RateLimiter) Allow(id string) bool {
	r.mu.Lock()
	now := r.clockNow()
	v, ok := r.visitors.Get(id)
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.visitors.Add(id, v)
	}
	v.lastSeen = now
	r.mu.Unlock()

	return v.limiter.AllowN(now, 1)
}

// Cleanup 移除在 now 之前空闲超过阈值的客户端，返回移除数量
func (r *RateLimiter) Cleanup(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	// Keys 按从旧到新排列
	for _, id := range r.visitors.Keys() {
		v, ok := r.visitors.Peek(id)
		if !ok {
			continue
		}
		if now.Sub(v.lastSeen) < r.idle {
			break
		}
		r.visitors.Remove(id)
		removed++
	}
	return removed
}

// Len 当前跟踪的客户端数量
func (r *RateLimiter) Len() int {
	return r.visitors.Len()
}

// Middleware gin 中间件，超限返回 429
func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !r.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": http.StatusText(http.StatusTooManyRequests),
				"data":    nil,
			})
			return
		}
		c.Next()
	}
}
