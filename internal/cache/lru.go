package cache

// node is an entry in the recency list. It keeps its key so eviction can
// remove it from the map.
type node[K comparable, V any] struct {
	key        K
	value      V
	prev, next *node[K, V]
}

// list is a doubly-linked recency list: head is the most recently used
// entry, tail the least. It is not safe for concurrent use.
type list[K comparable, V any] struct {
	head, tail *node[K, V]
	len        int
}

func (l *list[K, V]) pushFront(n *node[K, V]) {
	n.prev = nil
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	} else {
		l.tail = n
	}
	l.head = n
	l.len++
}

func (l *list[K, V]) remove(n *node[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next = nil, nil
	l.len--
}

func (l *list[K, V]) moveToFront(n *node[K, V]) {
	if l.head == n {
		return
	}
	l.remove(n)
	l.pushFront(n)
}
