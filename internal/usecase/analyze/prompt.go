package analyze

import "strings"

const systemPrompt = `You turn shopping requests into search criteria. Separate the features the
user wants (positive) from the features the user explicitly does not want
(negative). Answer with a single JSON object and nothing else.`

const categoryList = `HEADPHONES:
- Kulak İçi Bluetooth Kulaklık
- Kulak üstü Bluetooth kulaklık
- Bluetooth Kulaklık
- Kulaklık
- In-Ear Bluetooth Headphones
- Over-Ear Bluetooth Headphones

COOLING/HEATING:
- Vantilatör
- Klima Isıtıcı

CLEANING:
- Robot Süpürge
- Torbasız Süpürge
- Toz Torbalı Süpürge
- Dik Süpürge
- Süpürge
- Buharlı Temizleyici
- Halı Yıkama Makinesi
- Bagless Vacuum

PHONES/TABLETS:
- Cep Telefonu
- Android Cep Telefonu
- iPhone IOS Cep Telefonları
- Tablet
- Telefon Aksesuarları

COMPUTERS:
- Laptop
- Bilgisayar
- Oyuncu Dizüstü Bilgisayarı

SMART DEVICES:
- Akıllı Saat
- Giyilebilir Teknoloji
- Akıllı Takip Cihazı

CHARGING:
- Şarj Cihazları
- Araç Şarj Cihazı
- Şarj Kablosu

GENERAL:
- Elektronik
- Elektrikli Ev Aletleri
- Buzdolabı
- Çanta`

const userTemplate = `AVAILABLE CATEGORIES (pick the MOST SPECIFIC match):
{{categories}}

Produce a JSON object with these keys:
- "category_search_string": the most specific category from the list, "" if none fits
- "text_search": keywords for desired features
- "negative_text_search": keywords the user explicitly does NOT want
- "price_min": minimum price (0 if not specified)
- "price_max": maximum price (99999 if not specified)
- "min_rating": minimum rating (0 if not specified)

PRICE HANDLING:
- "between 1500 and 2500" -> price_min: 1500, price_max: 2500
- "under 2000" -> price_min: 0, price_max: 2000
- "over 500" -> price_min: 500, price_max: 99999
- a single exact price -> set both price_min and price_max to it
- no price mentioned -> price_min: 0, price_max: 99999

User request: "{{prompt}}"`

func userPrompt(prompt string) string {
	return strings.NewReplacer("{{categories}}", categoryList, "{{prompt}}", prompt).Replace(userTemplate)
}
