// Package series 提供有长度上限的时间序列缓冲区
package series

// Ring 固定容量的先进先出环形缓冲区
// 写满后继续写入会覆盖最旧的元素，不做任何加锁
type Ring[T any] struct {
	buf   []T
	start int // 最旧元素的位置
	size  int
}

// NewRing 创建指定容量的环形缓冲区，容量小于1时按1处理
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{buf: make([]T, capacity)}
}

// Push 追加一个元素，超出容量时先淘汰最旧的元素
func (r *Ring[T]) Push(item T) {
	if r.size < len(r.buf) {
		r.buf[(r.start+r.size)%len(r.buf)] = item
		r.size++
		return
	}
	r.buf[r.start] = item
	r.start = (r.start + 1) % len(r.buf)
}

// Latest 返回最近写入的元素
func (r *Ring[T]) Latest() (T, bool) {
	var zero T
	if r.size == 0 {
		return zero, false
	}
	return r.buf[(r.start+r.size-1)%len(r.buf)], true
}

// Items 按写入顺序返回所有元素的副本
func (r *Ring[T]) Items() []T {
	out := make([]T, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	return out
}

// Len 返回当前元素个数
func (r *Ring[T]) Len() int { return r.size }

// Cap 返回容量
func (r *Ring[T]) Cap() int { return len(r.buf) }
