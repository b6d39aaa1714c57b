package duplib_test

import (
	"testing"

	"github.com/akab00m/dupclean/duplib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type FingerprinterTestSuite struct {
	suite.Suite

	f duplib.Fingerprinter
}

func (suite *FingerprinterTestSuite) SetupTest() {
	suite.f = duplib.Fingerprinter{}
}

func (suite *FingerprinterTestSuite) TestDeterministic() {
	msg := duplib.Message{
		ContentType: duplib.ContentText,
		Text:        "Hello, world",
	}

	fp1, ct, _, err := suite.f.Fingerprint(msg)
	suite.NoError(err)
	suite.Equal(duplib.ContentText, ct)

	fp2, _, _, err := suite.f.Fingerprint(msg)
	suite.NoError(err)
	suite.Equal(fp1, fp2)
	suite.False(fp1.IsZero())
	suite.Len(fp1.String(), 2*duplib.FingerprintSize)
}

func (suite *FingerprinterTestSuite) TestForwardInsensitive() {
	original := duplib.Message{
		MessageID:    1,
		ContentType:  duplib.ContentPhoto,
		FileUniqueID: "AQADxyz",
		FileID:       "first-delivery",
	}
	forwarded := duplib.Message{
		MessageID:    2,
		ContentType:  duplib.ContentPhoto,
		FileUniqueID: "AQADxyz",
		FileID:       "second-delivery",
		IsForwarded:  true,
	}

	fp1, _, wasForwarded1, err := suite.f.Fingerprint(original)
	suite.NoError(err)
	suite.False(wasForwarded1)

	fp2, _, wasForwarded2, err := suite.f.Fingerprint(forwarded)
	suite.NoError(err)
	suite.True(wasForwarded2)

	suite.Equal(fp1, fp2)
}

func (suite *FingerprinterTestSuite) TestTextNormalization() {
	fp1, _, _, err := suite.f.Fingerprint(duplib.Message{Text: "  Hello\n\tWORLD  "})
	suite.NoError(err)

	fp2, _, _, err := suite.f.Fingerprint(duplib.Message{
		ContentType: duplib.ContentText,
		Text:        "hello world",
	})
	suite.NoError(err)

	suite.Equal(fp1, fp2)
}

func (suite *FingerprinterTestSuite) TestContentTypeIsPartOfIdentity() {
	fp1, _, _, err := suite.f.Fingerprint(duplib.Message{
		ContentType:  duplib.ContentPhoto,
		FileUniqueID: "abc",
	})
	suite.NoError(err)

	fp2, _, _, err := suite.f.Fingerprint(duplib.Message{
		ContentType:  duplib.ContentDocument,
		FileUniqueID: "abc",
	})
	suite.NoError(err)

	fp3, _, _, err := suite.f.Fingerprint(duplib.Message{Text: "abc"})
	suite.NoError(err)

	suite.NotEqual(fp1, fp2)
	suite.NotEqual(fp1, fp3)
	suite.NotEqual(fp2, fp3)
}

func (suite *FingerprinterTestSuite) TestCaptionIgnoredByDefault() {
	fp1, _, _, err := suite.f.Fingerprint(duplib.Message{
		ContentType:  duplib.ContentVideo,
		FileUniqueID: "video",
		Caption:      "first",
	})
	suite.NoError(err)

	fp2, _, _, err := suite.f.Fingerprint(duplib.Message{
		ContentType:  duplib.ContentVideo,
		FileUniqueID: "video",
		Caption:      "second",
	})
	suite.NoError(err)

	suite.Equal(fp1, fp2)
}

func (suite *FingerprinterTestSuite) TestCaptionIncluded() {
	f := duplib.Fingerprinter{IncludeCaption: true}

	fp1, _, _, err := f.Fingerprint(duplib.Message{
		ContentType:  duplib.ContentVideo,
		FileUniqueID: "video",
		Caption:      "first",
	})
	suite.NoError(err)

	fp2, _, _, err := f.Fingerprint(duplib.Message{
		ContentType:  duplib.ContentVideo,
		FileUniqueID: "video",
		Caption:      "  FIRST ",
	})
	suite.NoError(err)

	fp3, _, _, err := f.Fingerprint(duplib.Message{
		ContentType:  duplib.ContentVideo,
		FileUniqueID: "video",
		Caption:      "second",
	})
	suite.NoError(err)

	suite.Equal(fp1, fp2)
	suite.NotEqual(fp1, fp3)
}

func (suite *FingerprinterTestSuite) TestUnsupported() {
	testData := map[string]duplib.Message{
		"empty":            {},
		"whitespace":       {Text: " \n\t "},
		"media without id": {ContentType: duplib.ContentSticker, FileID: "x"},
		"unknown type":     {ContentType: duplib.ContentType(200), Text: "x"},
	}

	for name, msg := range testData {
		msg := msg

		suite.T().Run(name, func(t *testing.T) {
			_, _, _, err := suite.f.Fingerprint(msg)
			suite.ErrorIs(err, duplib.ErrUnsupportedContentType)
		})
	}
}

func TestFingerprinter(t *testing.T) {
	t.Parallel()
	suite.Run(t, &FingerprinterTestSuite{})
}

func TestNormalizeText(t *testing.T) {
	t.Parallel()

	testData := map[string]string{
		"":                  "",
		"abc":               "abc",
		"  A  B  ":          "a b",
		"Привет МИР":   "привет мир",
		"line1\r\nline2\n":  "line1 line2",
	}

	for input, expected := range testData {
		input := input
		expected := expected

		t.Run(input, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, expected, duplib.NormalizeText(input))
		})
	}
}
