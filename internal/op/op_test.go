package op_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"attrsync/internal/diag"
	"attrsync/internal/doccomment"
	"attrsync/internal/op"
)

func TestMessageText(t *testing.T) {
	m := &op.Message{
		Severity: diag.SevWarning,
		Code:     diag.AnnDeprecated,
		Fixable:  true,
		Template: "Annotation {{annotation}} should be attribute {{attribute}}",
		Data:     map[string]string{"annotation": "@test", "attribute": "Test"},
	}
	assert.Equal(t, "Annotation @test should be attribute Test", m.Text())
	d := m.Diagnostic()
	assert.True(t, d.Fixable)
	assert.Equal(t, diag.AnnDeprecated, d.Code)
}

func TestOwnerAndDescribe(t *testing.T) {
	m := &op.Message{Code: diag.AnnRedundant}
	tag := &doccomment.Tag{Name: "@group", Content: "slow"}
	ops := []op.Op{
		m,
		&op.RemoveAnnotation{Msg: m, Target: tag},
		&op.AddAttribute{Msg: m, Name: `PHPUnit\Framework\Attributes\Group`, Params: []string{"'slow'"}},
	}
	assert.Nil(t, op.Owner(ops[0]))
	assert.Same(t, m, op.Owner(ops[1]))
	assert.Len(t, op.Messages(ops), 1)
	assert.Equal(t, `RemoveAnnotation(@group "slow")`, op.Describe(ops[1]))
	assert.Equal(t, `AddAttribute(PHPUnit\Framework\Attributes\Group('slow'))`, op.Describe(ops[2]))
	assert.Equal(t, "Message(RedundantAnnotation, fixable=false)", op.Describe(ops[0]))
}
