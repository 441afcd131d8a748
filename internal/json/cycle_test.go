package json

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type hiddenLoop struct {
	Name string      `json:"name"`
	Skip *hiddenLoop `json:"-"`
	self *hiddenLoop
}

func TestCheckEncodable(t *testing.T) {
	n := &chainNode{Name: "a"}
	n.Next = &chainNode{Name: "b", Next: n}
	assert.Error(t, checkEncodable(n))

	m := map[string]any{}
	m["self"] = m
	assert.Error(t, checkEncodable(m))

	list := []any{nil}
	list[0] = list
	assert.Error(t, checkEncodable(list))

	// 不会被编码的字段上的环不算
	h := &hiddenLoop{Name: "h"}
	h.Skip, h.self = h, h
	assert.NoError(t, checkEncodable(h))

	var deep any = "leaf"
	for i := 0; i < maxEncodeDepth+1; i++ {
		deep = []any{deep}
	}
	assert.Error(t, checkEncodable(deep))

	assert.NoError(t, checkEncodable(nil))
	assert.NoError(t, checkEncodable(event{ID: 1, CreatedAt: testTime, Tags: []string{"a"}}))
	assert.NoError(t, checkEncodable([]byte("raw")))
}
