package gemini

import (
	"fmt"

	"github.com/malshatti44/DA-Studio/models"
)

const brandName = "Dukkan Assima"

func marketingTextPrompt(details models.ProductDetails) string {
	return fmt.Sprintf(`Act as a professional Instagram marketing expert.
The user has a product with the following details:
Title: %[1]s
Price: %[2]s %[4]s
Code: %[3]s

Tasks:
1. Rephrase the Title into a catchy, high-engagement Instagram headline (Arabic).
2. Write a complete Instagram caption including the rephrased title, a description of the product's value, the price, the product code (formatted as "كود المنتج: %[3]s"), and 5-10 relevant trending hashtags.

Return the result as JSON with keys: "rephrasedTitle" and "caption".`,
		details.Title, details.Price, details.SKU, models.Currency)
}

func postPrompt(title, price, sku string) string {
	return fmt.Sprintf(`Create a professional Instagram marketing post for "%[5]s".

ASSETS:
- Image 1: The product.
- Image 2: The official purple Dukkan template.

INSTRUCTIONS:
1. Re-create the template from Image 2 exactly.
2. PLACE PRODUCT: Remove background from Image 1 and place it in the center. Add a realistic soft shadow.
3. TOP HEADLINE: Write "%[1]s" in a bold, elegant white Arabic font at the top.
4. PRICE: In the purple box at the bottom-left, write "%[2]s" followed by "%[4]s" in a very large, clean white font.
5. PRODUCT CODE: In the white search bar area at the bottom-right, write the text "كود المنتج: %[3]s" in a clean dark font.

Ensure the final result is studio-quality and follows the "%[5]s" visual identity perfectly.`,
		title, price, sku, models.Currency, brandName)
}
