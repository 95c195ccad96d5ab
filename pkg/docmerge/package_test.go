package docmerge

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackage(t *testing.T) {
	pkg, err := OpenPackage(createDOCXBytes(t, packageFiles(para("x"))))
	require.NoError(t, err)

	assert.True(t, pkg.Has(mainPartName))
	assert.False(t, pkg.Has("word/media/logo.png"))

	pkg.Set("word/media/logo.png", []byte("png"))
	pkg.Set("word/media/logo.png", []byte("png2"))
	pkg.Set(mainPartName, []byte("<changed/>"))

	assert.Equal(t, []string{
		contentTypesName,
		"_rels/.rels",
		mainPartName,
		"word/media/logo.png",
	}, pkg.Names())

	var buf bytes.Buffer
	require.NoError(t, pkg.Write(&buf))

	reopened, err := OpenPackage(buf.Bytes())
	require.NoError(t, err)
	assert.Len(t, reopened.Names(), 4)

	content, err := reopened.Read(mainPartName)
	require.NoError(t, err)
	assert.Equal(t, "<changed/>", string(content))
	media, err := reopened.Read("word/media/logo.png")
	require.NoError(t, err)
	assert.Equal(t, "png2", string(media))
	rels, err := reopened.Read("_rels/.rels")
	require.NoError(t, err)
	assert.Equal(t, testPackageRels, string(rels))

	_, err = reopened.Read("word/missing.xml")
	assert.Error(t, err)
}

func TestOpenPackageErrors(t *testing.T) {
	_, err := OpenPackage([]byte("not a zip"))
	assert.Error(t, err)

	_, err = OpenPackage(createDOCXBytes(t, map[string]string{"_rels/.rels": testPackageRels}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), mainPartName)
}

func TestRelationshipsPath(t *testing.T) {
	tests := []struct {
		part string
		want string
	}{
		{"word/document.xml", "word/_rels/document.xml.rels"},
		{"word/header1.xml", "word/_rels/header1.xml.rels"},
		{"word/footer12.xml", "word/_rels/footer12.xml.rels"},
	}

	for _, tt := range tests {
		t.Run(tt.part, func(t *testing.T) {
			assert.Equal(t, tt.want, relationshipsPath(tt.part))
		})
	}
}

func TestRelationshipsMarshal(t *testing.T) {
	rels, err := parseRelationships(testPackageRels)
	require.NoError(t, err)
	require.Len(t, rels.Relationship, 1)

	rels.Relationship = append(rels.Relationship, Relationship{ID: "rId2", Type: imageRelationshipType, Target: "media/a.png"})
	out, err := rels.marshal()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, xmlHeader))
	assert.Equal(t, 1, strings.Count(out, "xmlns="))
	assert.Contains(t, out, `Target="word/document.xml"`)
	assert.Contains(t, out, `Id="rId2"`)
	assert.NotContains(t, out, "TargetMode")

	empty, err := parseRelationships(emptyRelationships())
	require.NoError(t, err)
	assert.Empty(t, empty.Relationship)
	assert.Equal(t, relationshipsNamespace, empty.Namespace)

	_, err = parseRelationships("<Relationships")
	assert.Error(t, err)
}

func TestRegisterExtension(t *testing.T) {
	pkg, err := OpenPackage(createDOCXBytes(t, packageFiles(para("x"))))
	require.NoError(t, err)

	tests := []struct {
		ext     string
		changed bool
	}{
		{".png", true},
		{"PNG", false},
		{"xml", false},
		{"", false},
		{".jpeg", true},
	}

	for _, tt := range tests {
		changed, err := pkg.registerExtension(tt.ext)
		require.NoError(t, err, tt.ext)
		assert.Equal(t, tt.changed, changed, tt.ext)
	}

	content, err := pkg.Read(contentTypesName)
	require.NoError(t, err)
	types := string(content)
	assert.Contains(t, types, `<Default Extension="png" ContentType="image/png"></Default>`)
	assert.Contains(t, types, `<Default Extension="jpeg" ContentType="image/jpeg"></Default>`)
	assert.Contains(t, types, `PartName="/word/document.xml"`)
	assert.Equal(t, 1, strings.Count(types, "xmlns="))
}

func TestRegisterExtensionMalformedManifest(t *testing.T) {
	files := packageFiles(para("x"))
	files[contentTypesName] = "<Types"
	pkg, err := OpenPackage(createDOCXBytes(t, files))
	require.NoError(t, err)

	_, err = pkg.registerExtension("png")
	assert.True(t, IsXMLError(err))
}
