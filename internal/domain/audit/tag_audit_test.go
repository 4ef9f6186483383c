package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTagAudit(t *testing.T) {
	t.Run("creates success record", func(t *testing.T) {
		record, err := NewTagAudit("gid://shopify/Product/1", TagActionAdded, "Sale", TagStatusSuccess, "")
		require.NoError(t, err)

		assert.Equal(t, "gid://shopify/Product/1", record.ProductID)
		assert.Equal(t, TagActionAdded, record.Action)
		assert.Equal(t, "Sale", record.Tag)
		assert.Equal(t, TagStatusSuccess, record.Status)
		assert.Nil(t, record.ErrorMessage)
		assert.NotEqual(t, record.ID.String(), "00000000-0000-0000-0000-000000000000")
		assert.False(t, record.IsError())
	})

	t.Run("creates error record with message", func(t *testing.T) {
		record, err := NewTagAudit("gid://shopify/Product/2", TagActionFailed, "Sale", TagStatusError, "max retries exceeded")
		require.NoError(t, err)

		require.NotNil(t, record.ErrorMessage)
		assert.Equal(t, "max retries exceeded", *record.ErrorMessage)
		assert.True(t, record.IsError())
	})

	t.Run("rejects empty product ID", func(t *testing.T) {
		_, err := NewTagAudit("", TagActionAdded, "Sale", TagStatusSuccess, "")
		assert.Error(t, err)
	})

	t.Run("rejects invalid action", func(t *testing.T) {
		_, err := NewTagAudit("gid://shopify/Product/1", TagAction("bogus"), "Sale", TagStatusSuccess, "")
		assert.Error(t, err)
	})

	t.Run("rejects empty tag", func(t *testing.T) {
		_, err := NewTagAudit("gid://shopify/Product/1", TagActionAdded, "", TagStatusSuccess, "")
		assert.Error(t, err)
	})

	t.Run("rejects invalid status", func(t *testing.T) {
		_, err := NewTagAudit("gid://shopify/Product/1", TagActionAdded, "Sale", TagStatus("bogus"), "")
		assert.Error(t, err)
	})
}

func TestTagAction_IsValid(t *testing.T) {
	assert.True(t, TagActionAdded.IsValid())
	assert.True(t, TagActionSkipped.IsValid())
	assert.True(t, TagActionFailed.IsValid())
	assert.False(t, TagAction("deleted").IsValid())
}

func TestTagStatus_IsValid(t *testing.T) {
	assert.True(t, TagStatusSuccess.IsValid())
	assert.True(t, TagStatusError.IsValid())
	assert.False(t, TagStatus("pending").IsValid())
}
