package detect

import "strings"

// profile holds the classification evidence for one language:
// high-frequency function words plus characters peculiar to its
// orthography.
type profile struct {
	stopwords map[string]struct{}
	chars     map[rune]struct{}
}

func newProfile(words, chars string) profile {
	p := profile{
		stopwords: make(map[string]struct{}),
		chars:     make(map[rune]struct{}),
	}
	for _, w := range strings.Fields(words) {
		p.stopwords[w] = struct{}{}
	}
	for _, r := range chars {
		p.chars[r] = struct{}{}
	}
	return p
}

var latinProfiles = map[string]profile{
	"en": newProfile("the and of to in is you that it for was with are this have not", ""),
	"de": newProfile("der die das und ist nicht ich sie mit ein eine zu den von auf werden", "ßäöü"),
	"fr": newProfile("le les et est je vous que pas pour dans une des du il être", "àâçéèêëîïôùûœ"),
	"es": newProfile("el los las es que no una por con para su al lo pero como", "ñ¿¡áíóú"),
	"pt": newProfile("o os as um uma não para com do da em que se mais você", "ãõç"),
	"it": newProfile("il lo gli di che non per una sono con ma si questo anche della", "ì"),
	"nl": newProfile("de het een en van ik dat niet je zijn op met voor te er", ""),
	"sv": newProfile("och att det som är jag på för med inte har till av om den", "åäö"),
	"da": newProfile("og det at den til er som på de med han af for ikke jeg", "æø"),
	"no": newProfile("og det at er som på jeg ikke til med han av for så men", "æø"),
	"fi": newProfile("ja on ei että hän se oli mutta kun niin minä joka mitä tämä ovat", "äö"),
	"pl": newProfile("i w nie na się jest że do z co jak tak ale po jego", "ąćęłńśźż"),
	"tr": newProfile("bir bu ve için ne çok ben değil ama gibi daha var ile mi de", "ığş"),
	"id": newProfile("yang dan di itu dengan untuk tidak ini dari dalam akan pada juga saya ke", ""),
	"ro": newProfile("și de la cu nu este un pentru că mai din pe se sunt o", "ăâîșț"),
	"cs": newProfile("a je na to se že s z do ale jak co tak pro jsem", "ěřůň"),
}

var cyrillicProfiles = map[string]profile{
	"ru": newProfile("и в не на я что он с как это но его к по вы", "ыэъё"),
	"uk": newProfile("і в не на що я з до як це але його та у він", "їєґ"),
	"bg": newProfile("и в не на но с за да от по как това той се е", "ъ"),
	"sr": newProfile("и у не на је да се што он са за од по али као", "ђћџљњ"),
}
