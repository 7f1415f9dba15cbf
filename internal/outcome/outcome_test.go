package outcome

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyRulingCivil(t *testing.T) {
	tests := []struct {
		name   string
		ruling string
		want   Pair
	}{
		{
			name:   "defendant acquitted",
			ruling: "Stefndi er sýkn af kröfum stefnanda.",
			want:   Pair{Loss, Win},
		},
		{
			name: "acquittal split from the defendant name by a newline",
			ruling: "Stefndi, Knattspyrnufélagið Haukar,\n" +
				"er sýkn í máli þessu.\n" +
				"Málskostnaður fellur niður.",
			want: Pair{Loss, Win},
		},
		{
			name: "entity name with abbreviation period",
			ruling: "Stefndi, Tryggingamiðstöðin hf.,\n" +
				"er sýkn af öllum kröfum stefnanda í máli þessu.",
			want: Pair{Loss, Win},
		},
		{
			name:   "defendant ordered to pay",
			ruling: "Stefndi greiði stefnanda 5.000.000 króna.",
			want:   Pair{Win, Loss},
		},
		{
			name:   "payment after an abbreviation",
			ruling: "Stefndi, Búð ehf., greiði stefnanda 1.200.000 krónur með dráttarvöxtum.",
			want:   Pair{Win, Loss},
		},
		{
			name:   "case dismissed",
			ruling: "Málinu er vísað frá dómi.",
			want:   Pair{Loss, Win},
		},
		{
			name:   "lower ruling annulled",
			ruling: "Hinn kærði úrskurður er felldur úr gildi.",
			want:   Pair{Win, Loss},
		},
		{
			name:   "case withdrawn",
			ruling: "Mál þetta er fellt niður.\nStefndi greiði stefnanda málskostnað.",
			want:   Pair{Unknown, Unknown},
		},
		{
			name:   "acquitted but ordered to pay costs favors the defendant",
			ruling: "Stefndi er sýkn af kröfum stefnanda.\nStefnandi greiði stefnda 800.000 krónur í málskostnað.",
			want:   Pair{Loss, Win},
		},
		{
			name:   "no signal",
			ruling: "Málskostnaður fellur niður.",
			want:   Pair{Unknown, Unknown},
		},
		{
			name:   "empty",
			ruling: "  \n",
			want:   Pair{Unknown, Unknown},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyRuling(tt.ruling, false))
		})
	}
}

func TestClassifyRulingCriminal(t *testing.T) {
	tests := []struct {
		name   string
		ruling string
		want   Pair
	}{
		{
			name:   "custodial sentence",
			ruling: "Ákærði, Jón Jónsson, sæti fangelsi í 3 mánuði.",
			want:   Pair{Win, Loss},
		},
		{
			name:   "acquittal",
			ruling: "Ákærði, Jón Jónsson, er sýkn af kröfum ákæruvaldsins.",
			want:   Pair{Loss, Win},
		},
		{
			name:   "partial acquittal with conviction",
			ruling: "Ákærði er sýknaður af 2. lið ákæru.\nÁkærði sæti fangelsi í 30 daga.",
			want:   Pair{Win, Loss},
		},
		{
			name:   "deferred sentencing",
			ruling: "Frestað er ákvörðun refsingar ákærða og fellur hún niður að liðnum tveimur árum.",
			want:   Pair{Win, Loss},
		},
		{
			name:   "appellate affirmance of the lower ruling",
			ruling: "Hinn kærði úrskurður er staðfestur.",
			want:   Pair{Loss, Win},
		},
		{
			name:   "fine",
			ruling: "Ákærði greiði 250.000 króna sekt í ríkissjóð.",
			want:   Pair{Win, Loss},
		},
		{
			name:   "annulled lower judgment",
			ruling: "Hinn áfrýjaði dómur er ómerktur.",
			want:   Pair{Win, Loss},
		},
		{
			name:   "voided decision is not a reversal",
			ruling: "Ákvörðun lögreglustjóra er felld úr gildi.",
			want:   Pair{Unknown, Unknown},
		},
		{
			name:   "nothing recognizable",
			ruling: "Sakarkostnaður greiðist úr ríkissjóði.",
			want:   Pair{Unknown, Unknown},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyRuling(tt.ruling, true))
		})
	}
}

func TestExtractRuling(t *testing.T) {
	text := "Mál þetta var dómtekið 1. mars.\nStefndi krefst sýknu.\nDómsorð:\nStefndi greiði stefnanda 100 krónur."
	assert.Equal(t, "Stefndi greiði stefnanda 100 krónur.", ExtractRuling(text))

	spaced := "Forsendur...\nD Ó M S O R Ð\nÁkærði sæti fangelsi í 2 mánuði."
	assert.Equal(t, "Ákærði sæti fangelsi í 2 mánuði.", ExtractRuling(spaced))

	order := "Forsendur...\nÚrskurðarorð:\nKrafa sóknaraðila er tekin til greina."
	assert.Equal(t, "Krafa sóknaraðila er tekin til greina.", ExtractRuling(order))
}

func TestExtractRulingFallsBackToTail(t *testing.T) {
	text := strings.Repeat("á", 3000) + "Stefndi er sýkn."
	ruling := ExtractRuling(text)
	assert.Equal(t, 2000, len([]rune(ruling)))
	assert.True(t, strings.HasSuffix(ruling, "Stefndi er sýkn."))
}

func TestClassifyUsesRulingSection(t *testing.T) {
	// The narrative mentions a prison term, the ruling acquits.
	text := "Ákæruvaldið krefst þess að ákærði sæti fangelsi.\n\nDómsorð:\nÁkærði, Jón Jónsson, er sýkn."
	assert.Equal(t, Pair{Loss, Win}, Classify(text, true))
}

func TestIsCriminal(t *testing.T) {
	assert.True(t, IsCriminal("D Ó M U R\nÁkæruvaldið\n(Anna Sigurðardóttir saksóknari)"))
	assert.True(t, IsCriminal("Lögreglustjórinn á höfuðborgarsvæðinu"))
	assert.False(t, IsCriminal("Landsbankinn hf.\n(Jón Jónsson lögmaður)"))
}

func TestExplain(t *testing.T) {
	assert.Equal(t, []Intent{DefendantWins}, Explain("Stefndi er sýkn.", false))
	assert.Equal(t, []Intent{DefendantWins, PlaintiffWins},
		Explain("Ákærði er sýknaður af 1. lið.\nÁkærði sæti fangelsi.", true))
	assert.Empty(t, Explain("Ekkert.", false))
}

func TestOutcomeKnown(t *testing.T) {
	assert.True(t, Win.Known())
	assert.True(t, Loss.Known())
	assert.False(t, Unknown.Known())
}
