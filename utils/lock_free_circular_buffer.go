package utils

import (
	"sync/atomic"
)

// Ring 无锁环形缓冲区, 只保留最近 size 个元素
type Ring[T any] struct {
	slots []atomic.Pointer[T]
	head  atomic.Uint64 // 下一个写入位置
}

func NewRing[T any](size int) *Ring[T] {
	if size <= 0 {
		size = 1
	}
	return &Ring[T]{slots: make([]atomic.Pointer[T], size)}
}

func (r *Ring[T]) Cap() int {
	return len(r.slots)
}

// Add 添加元素, 覆盖最旧的元素
func (r *Ring[T]) Add(item *T) {
	pos := r.head.Add(1) - 1
	r.slots[pos%uint64(len(r.slots))].Store(item)
}

// All returns the buffered items from oldest to newest.
// 并发写入时可能读到刚被覆盖的槽位, 结果只保证每个元素都曾经被加入过
func (r *Ring[T]) All() []*T {
	head := r.head.Load()
	size := uint64(len(r.slots))
	count := min(head, size)
	if count == 0 {
		return nil
	}

	result := make([]*T, 0, count)
	for i := head - count; i < head; i++ {
		if item := r.slots[i%size].Load(); item != nil {
			result = append(result, item)
		}
	}
	return result
}
