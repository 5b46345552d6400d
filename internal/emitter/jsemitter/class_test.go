package jsemitter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/swagger2request/internal/format"
	"github.com/mark3labs/swagger2request/internal/spec"
)

func TestEmitClass(t *testing.T) {
	def := spec.Definition{
		Name: "Pet",
		Properties: []spec.Property{
			{Name: "id"},
			{Name: "category", Description: "pet category", Ref: "Category"},
			{Name: "name", Description: "pet name"},
		},
	}
	c, err := EmitClass(def, ClassOptions{Formatter: format.JS{}})
	require.NoError(t, err)

	want := "export class Pet {\n" +
		"  id = undefined;\n" +
		"\n" +
		"  /**\n" +
		"   * pet category\n" +
		"   */\n" +
		"  category = {};\n" +
		"\n" +
		"  /**\n" +
		"   * pet name\n" +
		"   */\n" +
		"  name = undefined;\n" +
		"}\n"
	assert.Equal(t, want, c.Source)
	assert.Equal(t, "Pet", c.Name)
	assert.Equal(t, "Pet.js", c.FileName)
}

func TestEmitClassStripsNamespace(t *testing.T) {
	for _, name := range []string{"shop.Order", "com.shop.Order"} {
		c, err := EmitClass(spec.Definition{Name: name}, ClassOptions{})
		require.NoError(t, err, name)
		assert.Equal(t, "Order", c.Name)
		assert.Equal(t, name+".js", c.FileName)
		assert.Equal(t, "export class Order {\n}\n", c.Source)
	}
}

func TestEmitClassExcludesPrefixes(t *testing.T) {
	for _, name := range []string{"PageInfo", "Page", "api.PageResult"} {
		_, err := EmitClass(spec.Definition{Name: name}, ClassOptions{})
		assert.ErrorIs(t, err, ErrExcluded, name)
	}

	_, err := EmitClass(spec.Definition{Name: "Pager"}, ClassOptions{ExcludePrefixes: []string{}})
	assert.NoError(t, err)

	_, err = EmitClass(spec.Definition{Name: "PageInfo"}, ClassOptions{ExcludePrefixes: []string{"Internal"}})
	assert.NoError(t, err)

	_, err = EmitClass(spec.Definition{Name: "InternalState"}, ClassOptions{ExcludePrefixes: []string{"Internal"}})
	assert.ErrorIs(t, err, ErrExcluded)
}

func TestEmitClassRejectsInvalidNames(t *testing.T) {
	for _, name := range []string{"Result«Order»", "shop.", "List<Pet>", "2fa", "shop.class"} {
		_, err := EmitClass(spec.Definition{Name: name}, ClassOptions{})
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}
}

func TestEmitClassQuotesFieldNames(t *testing.T) {
	def := spec.Definition{
		Name: "Odd",
		Properties: []spec.Property{
			{Name: "content-type"},
			{Name: "default"},
			{Name: "constructor"},
			{Name: "2nd"},
			{Name: "x", Description: "ends */ early"},
		},
	}
	c, err := EmitClass(def, ClassOptions{Formatter: format.JS{}})
	require.NoError(t, err)
	assert.Contains(t, c.Source, "  'content-type' = undefined;\n")
	assert.Contains(t, c.Source, "  default = undefined;\n")
	assert.Contains(t, c.Source, "  ['constructor'] = undefined;\n")
	assert.Contains(t, c.Source, "  '2nd' = undefined;\n")
	assert.Contains(t, c.Source, "   * ends *\\/ early\n")
}

func TestEmitClassQuotesModifierNames(t *testing.T) {
	def := spec.Definition{
		Name: "Order",
		Properties: []spec.Property{
			{Name: "get"},
			{Name: "set"},
			{Name: "async"},
			{Name: "static", Ref: "Flags"},
			{Name: "other"},
		},
	}
	c, err := EmitClass(def, ClassOptions{Formatter: format.JS{}})
	require.NoError(t, err)
	assert.True(t, c.Formatted)
	assert.NoError(t, c.FormatErr)
	assert.Contains(t, c.Source, "  'get' = undefined;\n")
	assert.Contains(t, c.Source, "  'set' = undefined;\n")
	assert.Contains(t, c.Source, "  'async' = undefined;\n")
	assert.Contains(t, c.Source, "  'static' = {};\n")
	assert.Contains(t, c.Source, "  other = undefined;\n")
}

func TestEmitClassKeepsTextWhenFormatterFails(t *testing.T) {
	boom := errors.New("boom")
	failing := format.FormatterFunc(func(string) (string, error) { return "", boom })

	c, err := EmitClass(spec.Definition{Name: "Pet", Properties: []spec.Property{{Name: "id"}}}, ClassOptions{Formatter: failing})
	require.NoError(t, err)
	assert.False(t, c.Formatted)
	assert.ErrorIs(t, c.FormatErr, boom)
	assert.Equal(t, "export class Pet {\n  id = undefined;\n}\n", c.Source)
}

func TestClassFileName(t *testing.T) {
	assert.Equal(t, "a.Order.js", ClassFileName("a.Order"))
	assert.Equal(t, "x_y.js", ClassFileName("x/y"))
}
