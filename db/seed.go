package db

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/onnwee/lingua-bot/i18n"
	"github.com/onnwee/lingua-bot/keyword"
	"github.com/onnwee/lingua-bot/quota"
)

// EnsureSeeded installs the default configuration record and template table
// when the database is empty, so a fresh deployment answers commands without
// manual setup. Existing rows are never touched.
func EnsureSeeded(ctx context.Context, dbx *sql.DB) error {
	if _, err := LoadBotConfig(ctx, dbx); err != nil {
		slog.Info("seeding default bot configuration", slog.String("component", "db_seed"))
		if err := SaveBotConfig(ctx, dbx, DefaultBotConfig()); err != nil {
			return err
		}
	}
	if _, err := LoadTemplates(ctx, dbx); err != nil {
		slog.Info("seeding default templates", slog.String("component", "db_seed"))
		if err := SaveTemplates(ctx, dbx, DefaultTemplates()); err != nil {
			return err
		}
	}
	return nil
}

// DefaultBotConfig is the seed configuration: a core language set with the
// keyword tables needed to parse commands in each of them.
func DefaultBotConfig() *BotConfig {
	return &BotConfig{
		DefaultPersona: Persona{Lang: "en", Style: "normal"},
		Limits: map[string]quota.Limits{
			"cheap":  {PerMinute: 12, PerDay: 600},
			"strong": {PerMinute: 5, PerDay: 150},
		},
		BlockedWords:   []string{},
		BlockedUsers:   map[string]string{},
		SupportedLangs: []string{"en", "es", "pt", "fr", "de", "it", "ja", "ko", "zh", "ru", "nl", "pl"},
		LangPriority:   []string{"en", "es", "pt", "fr", "de", "ja"},
		AutoFromLang:   "en",
		AutoToLang:     "es",
		LowercaseNames: []string{"es", "pt", "fr", "it"},
		LanguageNames: keyword.Table{
			"en": {"en": "English", "es": "Spanish", "pt": "Portuguese", "fr": "French", "de": "German", "it": "Italian", "ja": "Japanese", "ko": "Korean", "zh": "Chinese", "ru": "Russian", "nl": "Dutch", "pl": "Polish"},
			"es": {"en": "inglés", "es": "español", "pt": "portugués", "fr": "francés", "de": "alemán", "it": "italiano", "ja": "japonés", "ko": "coreano", "zh": "chino", "ru": "ruso", "nl": "neerlandés", "pl": "polaco"},
			"pt": {"en": "inglês", "es": "espanhol", "pt": "português", "fr": "francês", "de": "alemão", "it": "italiano", "ja": "japonês", "ko": "coreano", "zh": "chinês", "ru": "russo", "nl": "holandês", "pl": "polonês"},
			"fr": {"en": "anglais", "es": "espagnol", "pt": "portugais", "fr": "français", "de": "allemand", "it": "italien", "ja": "japonais", "ko": "coréen", "zh": "chinois", "ru": "russe", "nl": "néerlandais", "pl": "polonais"},
			"de": {"en": "Englisch", "es": "Spanisch", "pt": "Portugiesisch", "fr": "Französisch", "de": "Deutsch", "it": "Italienisch", "ja": "Japanisch", "ko": "Koreanisch", "zh": "Chinesisch", "ru": "Russisch", "nl": "Niederländisch", "pl": "Polnisch"},
			"ja": {"en": "英語", "es": "スペイン語", "pt": "ポルトガル語", "fr": "フランス語", "de": "ドイツ語", "it": "イタリア語", "ja": "日本語", "ko": "韓国語", "zh": "中国語", "ru": "ロシア語"},
		},
		SettingKeys: keyword.Table{
			"en": {"target": "target", "to": "target", "speaking": "speaking", "from": "speaking", "language": "speaking", "style": "style", "pronouns": "pronouns"},
			"es": {"destino": "target", "objetivo": "target", "hablo": "speaking", "idioma": "speaking", "estilo": "style", "pronombres": "pronouns"},
			"pt": {"destino": "target", "alvo": "target", "falo": "speaking", "idioma": "speaking", "estilo": "style", "pronomes": "pronouns"},
			"fr": {"cible": "target", "parle": "speaking", "langue": "speaking", "style": "style", "pronoms": "pronouns"},
			"de": {"ziel": "target", "spreche": "speaking", "sprache": "speaking", "stil": "style", "pronomen": "pronouns"},
			"ja": {"翻訳先": "target", "話す": "speaking", "言語": "speaking", "スタイル": "style", "代名詞": "pronouns"},
		},
		Styles: keyword.Table{
			"en": {"normal": "normal", "pirate": "pirate", "yoda": "yoda", "shakes": "shakes", "archaic": "shakes", "old": "shakes", "dk": "dk", "donkeykong": "dk", "baby": "baby"},
			"es": {"normal": "normal", "pirata": "pirate", "yoda": "yoda", "antiguo": "shakes", "arcaico": "shakes", "dk": "dk", "bebé": "baby", "bebe": "baby"},
			"pt": {"normal": "normal", "pirata": "pirate", "yoda": "yoda", "arcaico": "shakes", "antigo": "shakes", "dk": "dk", "bebê": "baby", "bebe": "baby"},
			"fr": {"normal": "normal", "pirate": "pirate", "yoda": "yoda", "ancien": "shakes", "classique": "shakes", "dk": "dk", "bébé": "baby", "bebe": "baby"},
			"de": {"normal": "normal", "pirat": "pirate", "yoda": "yoda", "altdeutsch": "shakes", "archaisch": "shakes", "dk": "dk", "baby": "baby"},
			"ja": {"通常": "normal", "海賊": "pirate", "ヨーダ": "yoda", "古風": "shakes", "赤ちゃん": "baby"},
		},
		ModelTags: keyword.Table{
			"en": {"smart": "strong", "best": "strong", "fast": "cheap", "quick": "cheap"},
			"es": {"inteligente": "strong", "mejor": "strong", "rápido": "cheap", "rapido": "cheap"},
			"pt": {"inteligente": "strong", "melhor": "strong", "rápido": "cheap", "rapido": "cheap"},
			"fr": {"intelligent": "strong", "meilleur": "strong", "rapide": "cheap"},
			"de": {"klug": "strong", "beste": "strong", "schnell": "cheap"},
		},
		Tones: keyword.Table{
			"en": {"formal": "formal", "casual": "casual", "friendly": "friendly", "angry": "angry", "sad": "sad", "excited": "excited", "neutral": "neutral"},
			"es": {"formal": "formal", "casual": "casual", "amistoso": "friendly", "enojado": "angry", "triste": "sad", "emocionado": "excited", "neutral": "neutral"},
			"pt": {"formal": "formal", "casual": "casual", "amigável": "friendly", "amigavel": "friendly", "bravo": "angry", "triste": "sad", "animado": "excited", "neutro": "neutral"},
			"fr": {"formel": "formal", "décontracté": "casual", "amical": "friendly", "fâché": "angry", "triste": "sad", "excité": "excited", "neutre": "neutral"},
			"de": {"formell": "formal", "locker": "casual", "freundlich": "friendly", "wütend": "angry", "traurig": "sad", "aufgeregt": "excited", "neutral": "neutral"},
		},
		Pronouns: keyword.Table{
			"en": {"he": "male", "him": "male", "his": "male", "she": "female", "her": "female", "hers": "female", "they": "other", "them": "other"},
			"es": {"él": "male", "el": "male", "ella": "female", "elle": "other"},
			"pt": {"ele": "male", "dele": "male", "ela": "female", "dela": "female", "elu": "other"},
			"fr": {"il": "male", "lui": "male", "elle": "female", "iel": "other"},
			"de": {"er": "male", "ihm": "male", "sie": "female", "ihr": "female"},
			"ja": {"彼": "male", "彼女": "female"},
		},
		GrammarHints: map[string]map[string]string{
			"es": {
				"male":   "Use masculine adjective and participle agreement for the speaker.",
				"female": "Use feminine adjective and participle agreement for the speaker.",
			},
			"pt": {
				"male":   "Use masculine gender agreement for the speaker.",
				"female": "Use feminine gender agreement for the speaker.",
			},
			"fr": {
				"male":   "Accord the speaker's adjectives and past participles in the masculine.",
				"female": "Accord the speaker's adjectives and past participles in the feminine.",
			},
		},
		CommandAliases: map[string]string{
			"en": "!translatehelp", "es": "!ayudatraduccion", "pt": "!ajudatraducao",
			"fr": "!aidetraduction", "de": "!übersetzenhilfe", "ja": "!翻訳ヘルプ",
		},
		HelpURL: "https://lingua.bot/help",
	}
}

// DefaultTemplates is the seed message table: English carries every key (the
// final fallback), other languages a partial set that exercises the fallback
// chain.
func DefaultTemplates() i18n.Templates {
	return i18n.Templates{
		"en": {
			"apiError_normal": "Sorry, a translation error occurred.",
			"apiError_pirate": "Shiver me timbers! The cursed machine has sprung a leak!",
			"apiError_yoda":   "A disturbance in the Force, there is. An error, I sense.",

			"blocked_normal": "Sorry, that message cannot be translated.",
			"blocked_pirate": "Belay that! Those words be forbidden on this ship!",

			"alreadyTranslated_normal": "That message is already in the target language!",
			"alreadyTranslated_pirate": "Shiver me timbers! That be the tongue we're sailin' to already!",
			"alreadyTranslated_yoda":   "In the target language, that message already is. Hmmm.",

			"unrecognizable_normal": "I couldn't recognize a language in that message.",
			"unrecognizable_pirate": "Arrr, that parley be gibberish to me ears!",

			"dailyLimit_normal": "That command is too complex for the remaining daily API limit.",
			"dailyLimit_pirate": "The rum barrel is empty for today, matey! No more magic 'til sunrise.",
			"rateLimit_normal":  "Too many translations at once! Give me a minute to catch my breath.",
			"rateLimit_pirate":  "Avast! The sails can only catch so much wind — wait a tick!",

			"helpTranslate_normal": "{gender, select, male {@{0}, you need to provide text to translate! For a full guide, type {1}} female {@{0}, you need to provide text to translate! For a full guide, type {1}} other {@{0}, you need to provide text to translate! For a full guide, type {1}}}",
			"helpTranslate_pirate": "Arrr, @{0}! Ye must give me some words to parley! Try {1} for the full map.",
			"helpTranslate_yoda":   "Provide text, you must, @{0}. Guidance you seek? {1}, you will type.",

			"helpGuide_normal": "@{0}, full guide: {1}",

			"translationHeader_normal": "@{0} in {1}:",
			"translationHeader_pirate": "@{0} be sayin' in {1}:",
			"translationHeader_yoda":   "In {1}, @{0} speaks:",

			"quoteOpen":  "„",
			"quoteClose": "“",

			"clearConfirm_normal": "Your language preferences have been cleared.",
			"clearConfirm_pirate": "Heave ho! Yer custom chart has been sent to Davy Jones' Locker.",
			"clearNone_normal":    "You did not have a language preference to clear.",
			"clearNone_pirate":    "Avast ye! There be no chart in yer hold to cast overboard!",

			"invalidCode_normal": "{1} is not a valid language code.",
			"invalidCode_pirate": "Arrr, that be no proper heading! {1} is not a known tongue.",

			"settingsConfirm_normal": "{gender, select, male {@{0}, I set your {1}.} female {@{0}, I set your {1}.} other {@{0}, I set your {1}.}}",
			"settingsConfirm_pirate": "Aye, @{0}! Yer chart now reads: {1}.",
			"settingsInvalid_normal": "@{0}, I couldn't understand these settings: {1}",
			"settingsNone_normal":    "@{0}, give me settings like target:es or style:pirate.",

			"confirmPartTarget_normal":   "target language to {0}",
			"confirmPartTarget_pirate":   "new heading to the {0} seas",
			"confirmPartSpeaking_normal": "speaking language to {0}",
			"confirmPartSpeaking_pirate": "my tongue to {0}",
			"confirmPartStyle_normal":    "style to {0}",
			"confirmPartStyle_pirate":    "swagger to {0}",
			"confirmPartPronouns_normal": "pronouns to '{0}'",

			"adminBlockConfirm_normal":       "@{0}, the user {1} has been blocked from using translation commands.",
			"adminBlockConfirm_pirate":       "Aye, @{0}! The scallywag {1} has been sent to the brig!",
			"adminBlockAlreadyExists_normal": "@{0}, the user {1} is already on the blocklist.",
			"adminBlockAlreadyExists_pirate": "Belay that, @{0}! {1} is already in the brig!",
			"adminBlockNoUser_normal":        "@{0}, you must specify a username to block.",
			"adminBlockUnknownUser_normal":   "@{0}, I don't know any user called {1}.",
			"adminUnblockConfirm_normal":     "{gender, select, male {@{0}, the user {1} has been unblocked.} female {@{0}, the user {1} has been unblocked.} other {@{0}, the user {1} has been unblocked.}}",
			"adminUnblockConfirm_pirate":     "Aye, @{0}! The scallywag {1} has been freed from the brig!",
			"adminUnblockNotFound_normal":    "@{0}, the user {1} was not found on the blocklist.",
			"adminUnblockNoUser_normal":      "@{0}, you must specify a username to unblock.",

			"blocklistAddConfirm_normal":    "The word {1} has been added to the translation blocklist.",
			"blocklistAlreadyExists_normal": "The word {1} is already in the translation blocklist.",
			"blocklistRemoveConfirm_normal": "The word {1} has been removed from the translation blocklist.",
			"blocklistNotFound_normal":      "The word {1} was not found in the translation blocklist.",
			"blocklistNoWord_normal":        "You need to specify a word to block or unblock!",
			"blocklistCleared_normal":       "The word blocklist has been cleared.",
			"blockListUsers_normal":         "Blocked users: {1}",
			"blockListUsersEmpty_normal":    "The user blocklist is currently empty.",
			"blockListWords_normal":         "Blocked words: {1}",
			"blockListWordsEmpty_normal":    "The word blocklist is currently empty.",
		},
		"es": {
			"apiError_normal":          "Lo siento, ocurrió un error de traducción.",
			"alreadyTranslated_normal": "¡Ese mensaje ya está en el idioma de destino!",
			"unrecognizable_normal":    "No pude reconocer un idioma en ese mensaje.",
			"dailyLimit_normal":        "Ese comando es demasiado complejo para el límite diario restante.",
			"rateLimit_normal":         "¡Demasiadas traducciones a la vez! Dame un minuto.",
			"helpTranslate_normal":     "@{0}, ¡necesitas darme texto para traducir! Para la guía completa, escribe {1}",
			"translationHeader_normal": "@{0} en {1}:",
			"quoteOpen":                "«",
			"quoteClose":               "»",
			"clearConfirm_normal":      "Tus preferencias de idioma han sido borradas.",
			"clearNone_normal":         "No tenías preferencias de idioma que borrar.",
			"settingsConfirm_normal":   "{gender, select, male {@{0}, listo: {1}.} female {@{0}, lista: {1}.} other {@{0}, hecho: {1}.}}",
			"confirmPartTarget_normal": "idioma de destino a {0}",
		},
		"pt": {
			"apiError_normal":          "Desculpe, ocorreu um erro de tradução.",
			"alreadyTranslated_normal": "Essa mensagem já está no idioma de destino!",
			"unrecognizable_normal":    "Não consegui reconhecer um idioma nessa mensagem.",
			"translationHeader_normal": "@{0} em {1}:",
			"helpTranslate_normal":     "@{0}, você precisa me dar um texto para traduzir! Para o guia completo, digite {1}",
		},
		"fr": {
			"apiError_normal":          "Désolé, une erreur de traduction s'est produite.",
			"translationHeader_normal": "@{0} en {1}:",
			"quoteOpen":                "« ",
			"quoteClose":               " »",
		},
	}
}
