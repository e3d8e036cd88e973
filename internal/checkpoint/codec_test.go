package checkpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sumocli/pkg/contracts/domain"
)

func TestProfileCodecNulls(t *testing.T) {
	codec := ProfileCodec{}
	rec := domain.ProfileRecord{
		Identity:  "3842",
		Debut:     domain.Some("2018.01"),
		FullName:  domain.Some("Hoshoryu Tomokatsu"),
		Height:    domain.Some("188"),
		IsNew:     domain.Some(false),
		BirthDate: domain.Some("May 22, 1999"),
	}

	fields := codec.Encode(rec)
	assert.Equal(t, []string{"3842", "2018.01", "", "Hoshoryu Tomokatsu", "", "", "", "188", "", "May 22, 1999", "0"}, fields)

	back, err := codec.Decode(fields)
	require.NoError(t, err)
	assert.Equal(t, rec, back)
	assert.False(t, back.Stable.Valid)
}

func TestProfileCodecRejectsBadRecords(t *testing.T) {
	codec := ProfileCodec{}
	_, err := codec.Decode([]string{"1"})
	assert.Error(t, err)

	_, err = codec.Decode([]string{"", "", "", "", "", "", "", "", "", "", ""})
	assert.Error(t, err)

	_, err = codec.Decode([]string{"1", "", "", "", "", "", "", "", "", "", "maybe"})
	assert.Error(t, err)
}

func TestEncodeBool(t *testing.T) {
	assert.Equal(t, "", EncodeBool(domain.Null[bool]()))
	assert.Equal(t, "1", EncodeBool(domain.Some(true)))
	assert.Equal(t, "0", EncodeBool(domain.Some(false)))
}

func TestRosterCodecHeader(t *testing.T) {
	h := RosterCodec{}.Header()
	h[0] = "changed"
	assert.Equal(t, "identity", RosterCodec{}.Header()[0])
}
