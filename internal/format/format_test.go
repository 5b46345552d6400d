package format

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const module = "\n\nimport request from '@/utils/request';\n\n\n" +
	"/**\n * find pet\n */\n" +
	"const PetPetIdGET = async (petId) => {\t \n" +
	"\treturn request({\n\t\turl: `/pet/${petId}`,\n\t\tmethod: 'get'\n\t});\n};\n\n\n\n" +
	"export { PetPetIdGET };\n\n"

func TestJS_Format(t *testing.T) {
	t.Parallel()
	out, err := JS{}.Format(module)
	require.NoError(t, err)
	want := "import request from '@/utils/request';\n\n" +
		"/**\n * find pet\n */\n" +
		"const PetPetIdGET = async (petId) => {\n" +
		"  return request({\n    url: `/pet/${petId}`,\n    method: 'get'\n  });\n};\n\n" +
		"export { PetPetIdGET };\n"
	assert.Equal(t, want, out)
}

func TestJS_Format_Idempotent(t *testing.T) {
	t.Parallel()
	once, err := JS{}.Format(module)
	require.NoError(t, err)
	twice, err := JS{}.Format(once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestJS_Format_Class(t *testing.T) {
	t.Parallel()
	src := "export class Order {\n  /** id */\n  id = undefined;\n  'ship-date' = undefined;\n  pet = {};\n}\n"
	out, err := JS{}.Format(src)
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestJS_Format_SyntaxError(t *testing.T) {
	t.Parallel()
	_, err := JS{}.Format("export class Result«Order» {\n}\n")
	require.Error(t, err)
	var se *SyntaxError
	assert.True(t, errors.As(err, &se), "expected *SyntaxError, got %T", err)
}

func TestScriptView(t *testing.T) {
	t.Parallel()
	in := "import request from 'x';\nexport class A {}\nexport { A, B };\nimport 'side';\nimport { c } from 'y';\n  import = undefined;"
	want := "var request;\nclass A {}\nvoid [ A, B ];\nvoid 'side';\nvoid \"{ c }\";\n  import = undefined;"
	assert.Equal(t, want, scriptView(in))
}

func TestFormatterFunc(t *testing.T) {
	t.Parallel()
	var f Formatter = FormatterFunc(func(src string) (string, error) { return src + "!", nil })
	out, err := f.Format("x")
	require.NoError(t, err)
	assert.Equal(t, "x!", out)
}
