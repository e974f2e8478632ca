package translator

import "encoding/json"

// paragraphTranslationSchema is the JSON Schema a translator's structured
// output must satisfy, mirroring translationimport.ParagraphTranslation.
var paragraphTranslationSchema = json.RawMessage(`{
	"type": "object",
	"required": ["sentences", "sourceLanguage", "targetLanguage"],
	"additionalProperties": false,
	"properties": {
		"sentences": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["fullTranslation", "words"],
				"additionalProperties": false,
				"properties": {
					"fullTranslation": {"type": "string"},
					"words": {
						"type": "array",
						"items": {
							"type": "object",
							"required": ["original", "grammar"],
							"additionalProperties": false,
							"properties": {
								"original": {"type": "string"},
								"note": {"type": "string"},
								"isPunctuation": {"type": "boolean"},
								"contextualTranslations": {
									"type": "array",
									"items": {"type": "string"}
								},
								"grammar": {
									"type": "object",
									"required": ["originalInitialForm", "targetInitialForm", "partOfSpeech"],
									"additionalProperties": false,
									"properties": {
										"originalInitialForm": {"type": "string"},
										"targetInitialForm": {"type": "string"},
										"partOfSpeech": {"type": "string"},
										"plurality": {"type": "string"},
										"person": {"type": "string"},
										"tense": {"type": "string"},
										"case": {"type": "string"},
										"other": {"type": "string"}
									}
								}
							}
						}
					}
				}
			}
		},
		"sourceLanguage": {"type": "string"},
		"targetLanguage": {"type": "string"}
	}
}`)
