package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemorySets_RemoveByToken(t *testing.T) {
	ms := NewMemorySets()
	ms.PutMember("tags", "abc")
	ms.PutMember("tags", "def")

	count := ms.RemoveByToken("tags", "abc")
	assert.Equal(t, 1, count)
	assert.False(t, ms.HasMember("tags", "abc"))
	assert.True(t, ms.HasMember("tags", "def"))
}

func TestMemorySets_RemoveByToken_MissingIsNotError(t *testing.T) {
	ms := NewMemorySets()
	assert.Equal(t, 0, ms.RemoveByToken("missing", "abc"))

	ms.PutMember("k", "a")
	assert.Equal(t, 0, ms.RemoveByToken("k", "b"))
}

func TestMemorySets_RemoveAllMembersDropsKey(t *testing.T) {
	ms := NewMemorySets()
	ms.PutMember("k", "a")
	ms.RemoveByToken("k", "a")
	assert.Equal(t, 0, ms.MemberCount("k"))
}
