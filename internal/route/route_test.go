package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaths(t *testing.T) {
	assert.Equal(t, "/post/abc", Post("abc"))
	assert.Equal(t, "/edit/abc", Edit("abc"))
	assert.Equal(t, "/profile/alice", Profile("alice"))
	assert.Equal(t, "/post/abc/like", Like("abc"))
	assert.Equal(t, "/post/abc/comments", Comments("abc"))
	assert.Equal(t, "/post/abc/delete", Delete("abc"))
}

func TestPaths_EscapeSegments(t *testing.T) {
	assert.Equal(t, "/profile/jo%20ann", Profile("jo ann"))
	assert.Equal(t, "/post/a%2Fb", Post("a/b"))
}
