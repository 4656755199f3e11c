package webutil

import (
	"log"
	"reflect"
	"strings"

	"github.com/go-playground/locales/ja" // 日本語ロケール
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	ja_translations "github.com/go-playground/validator/v10/translations/ja" // 日本語翻訳
)

// Validator はアプリケーション全体で共有されるバリデータインスタンスです。
var Validator *validator.Validate

// Trans はエラーメッセージを翻訳するためのトランスレータです。
var Trans ut.Translator

var fieldNameTranslations = map[string]string{
	"type":  "イベント種別",
	"value": "イベントの値",
}

func init() {
	Validator = validator.New()

	// JSONタグからフィールド名を取得するように設定
	Validator.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	japanese := ja.New()
	uni := ut.New(japanese, japanese)
	var found bool
	Trans, found = uni.GetTranslator("ja")
	if !found {
		log.Fatal("translator not found")
	}

	if err := ja_translations.RegisterDefaultTranslations(Validator, Trans); err != nil {
		log.Fatal(err)
	}

	// 個別のメッセージを上書き (フィールド名も日本語にする)
	registerTranslation("required", "{0}は必須項目です。")
	registerTranslation("oneof", "{0}は[{1}]のいずれかでなければなりません。")
	registerTranslation("max", "{0}は{1}文字以下で入力してください。")
}

// registerTranslation はタグのメッセージテンプレートを登録するヘルパー関数
// ({0} はフィールド名、{1} はタグのパラメータ)
func registerTranslation(tag, msg string) {
	Validator.RegisterTranslation(tag, Trans, func(ut ut.Translator) error {
		return ut.Add(tag, msg, true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		fieldName := fe.Field()
		if translated, ok := fieldNameTranslations[fieldName]; ok {
			fieldName = translated
		}
		t, _ := ut.T(tag, fieldName, fe.Param())
		return t
	})
}
