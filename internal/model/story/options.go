package story

// Locations are the suggested settings. Custom values are accepted as well.
var Locations = []string{
	"Enchanted Forest", "Royal Castle", "Small Village", "Magical Realm",
	"Mountain Peak", "Underwater Kingdom", "Cloud City", "Dark Woods",
}

// Languages are the suggested target languages. Custom values are accepted as well.
var Languages = []string{
	"English", "Spanish", "French", "German", "Italian", "Portuguese", "Dutch", "Russian",
	"Polish", "Czech", "Slovak", "Hungarian", "Romanian", "Bulgarian", "Croatian", "Serbian",
	"Slovenian", "Greek", "Turkish", "Finnish", "Swedish", "Norwegian", "Danish", "Icelandic",
	"Irish", "Welsh", "Scottish Gaelic", "Catalan", "Basque", "Galician", "Ukrainian",
	"Belarusian", "Lithuanian", "Latvian", "Estonian", "Maltese", "Luxembourgish", "Albanian",
	"Macedonian", "Bosnian", "Montenegrin", "Chinese", "Japanese", "Korean", "Arabic", "Hindi",
}
