package deck

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	content := `{"slides":[
		{"type":"title","title":"Renewable Energy","subtitle":"Powering tomorrow","backgroundImage":"https://img/1.jpg"},
		{"type":"bullet","title":"Why now","items":["Cost","Climate"]},
		{"type":"split","title":"Solar","text":"Cheap","imageUrl":"https://img/2.jpg"},
		{"type":"bigdata","title":"Growth","number":"30%","caption":"of new capacity"},
		{"type":"quote","title":"Closing","quote":"The sun is free.","author":"Someone"}
	]}`

	slides, err := Parse(content)
	require.NoError(t, err)
	require.Len(t, slides, 5)

	assert.Equal(t, TypeTitle, slides[0].Type)
	assert.Equal(t, "https://img/1.jpg", slides[0].BackgroundImage)
	assert.Equal(t, Bullets{"Cost", "Climate"}, slides[1].Items)
	assert.Equal(t, "https://img/2.jpg", slides[2].ImageURL)
	assert.Equal(t, Scalar("30%"), slides[3].Number)
	assert.Equal(t, Scalar("Someone"), slides[4].Author)
	assert.True(t, InTargetRange(slides))
}

func TestParse_MissingSlidesKeyIsEmpty(t *testing.T) {
	slides, err := Parse(`{"title":"nothing here"}`)
	require.NoError(t, err)
	assert.NotNil(t, slides)
	assert.Empty(t, slides)
}

func TestParse_FencedAnswer(t *testing.T) {
	slides, err := Parse("```json\n{\"slides\":[{\"type\":\"title\",\"title\":\"T\"}]}\n```")
	require.NoError(t, err)
	require.Len(t, slides, 1)
	assert.False(t, InTargetRange(slides))
}

func TestParse_Failures(t *testing.T) {
	for name, content := range map[string]string{
		"prose":            "I could not build a deck.",
		"slides not array": `{"slides":"four of them"}`,
		"truncated":        `{"slides":[{"type":"title"`,
		"top-level array":  `[{"type":"title","title":"Solar"}]`,
		"object as title":  `{"slides":[{"type":"title","title":{"text":"x"}}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(content)
			assert.Error(t, err)
		})
	}
}

func TestParse_LooselyTypedFields(t *testing.T) {
	slides, err := Parse(`{"slides":[
		{"type":"bigdata","title":"N","number":"42","caption":7},
		{"type":"title","title":2024,"subtitle":true},
		{"type":"bullet","title":"One point","items":"Only this"},
		{"type":"bullet","title":"Mixed","items":["a",2,null]},
		{"type":"quote","title":"Q","quote":null,"author":3.5}
	]}`)
	require.NoError(t, err)
	require.Len(t, slides, 5)

	assert.Equal(t, Scalar("42"), slides[0].Number)
	assert.Equal(t, Scalar("7"), slides[0].Caption)
	assert.Equal(t, Scalar("2024"), slides[1].Title)
	assert.Equal(t, Scalar("true"), slides[1].Subtitle)
	assert.Equal(t, Bullets{"Only this"}, slides[2].Items)
	assert.Equal(t, Bullets{"a", "2", ""}, slides[3].Items)
	assert.Equal(t, Scalar(""), slides[4].Quote)
	assert.Equal(t, Scalar("3.5"), slides[4].Author)
}

func TestScalar(t *testing.T) {
	var s Slide
	require.NoError(t, json.Unmarshal([]byte(`{"type":"bigdata","number":73.5}`), &s))
	assert.Equal(t, Scalar("73.5"), s.Number)

	require.NoError(t, json.Unmarshal([]byte(`{"type":"bigdata","number":null}`), &s))
	assert.Equal(t, Scalar(""), s.Number)

	assert.Error(t, json.Unmarshal([]byte(`{"number":[1]}`), &s))
	assert.Error(t, json.Unmarshal([]byte(`{"caption":{"a":1}}`), &s))
}

func TestBullets(t *testing.T) {
	var s Slide
	require.NoError(t, json.Unmarshal([]byte(`{"items":""}`), &s))
	assert.Empty(t, s.Items)

	assert.Error(t, json.Unmarshal([]byte(`{"items":[["nested"]]}`), &s))

	out, err := json.Marshal(Slide{Type: TypeBigData, Title: "N", Number: "42", Caption: "7"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"bigdata","title":"N","number":"42","caption":"7"}`, string(out))
}

func TestSlideMarshalOmitsUnusedFields(t *testing.T) {
	out, err := json.Marshal(Slide{Type: TypeBullet, Title: "Points", Items: []string{"a"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"bullet","title":"Points","items":["a"]}`, string(out))
}

func TestSlideTypeKnown(t *testing.T) {
	assert.True(t, TypeQuote.Known())
	assert.False(t, SlideType("timeline").Known())
}
