package llm

// Few-shot prompts for pro/con phrase extraction. The examples teach
// the model the "N - phrase" output shape the parser expects.

const productPrompt = `I am a highly intelligent bot that extracts pros and cons from product reviews.

Review: Dont last very long. Lightweight and comfy.
Pros and cons:
1 - don't last long
2 - lightweight and comfy

Review: Love them! Great shoes if your going to be on your feet a lot!
Pros and cons:
1 - great shoes

Review: Support not there. Dont last very long.
Pros and cons:
1 - don't have support
2 - don't last long

Review: Even better than I expected!
Pros and cons:
1 - better than expected

Review: Fit well and comfortable.
Pros and cons:
1 - fit well
2 - comfortable

Review: Great shoe for the price!
Pros and cons:
1 - great shoe

Review: Support not there.
Pros and cons:
1 - doesn't have support

Review: terrible running shoe! Utter Trash.
Pros and cons:
1 - terrible running shoe

Review: Minimally adequate for astronomy - here's why
Pros and cons:
1 - minimally adequate

Review: My Favorite Binoculars. Not a toy! Real  binoculars! Good optics.
Pros and cons:
1 - real binoculars
2 - good optics

Review: BUY THESE, YOU WON'T REGRET IT!!
Pros and cons:
1 - good deal

Review: Poorly made, no support, don’t breathe.
Pros and cons:
1 - poorly made
2 - no support

Review: Great binoculars for the backyard astronomer
Pros and cons:
1 - great binoculars

Review: `

const restaurantPrompt = `I am a highly intelligent bot that extracts pros and cons from restaurant reviews.

Review: There are so many options it was hard to decide on what to order. The portions are perfect for sharing. The pan con con tomate is so simple but so delicious. The atmosphere is clean, modern and bright. We've been several times and we will return again soon!
Pros and Cons:
1 - many options
2 - portions perfect for sharing
3 - delicious food
4 - clean, modern and bright atmosphere

Review: Jamòn Iberico is a small plate that has a listed price of $24 for a small. The elote dish came with 4 halves of corn on the cob and bone marrow was very yummy. The mango lime soda mock-cocktail was just okay .
Pros and Cons:
1 - small plates
2 - yummy food
3 - okay cocktails

Review: The place comes off as a good neighborhood restaurant and bar with a casual vibe. It's a bit noisy indoors but no worse than most other casual dining places these days. The only knock on the place for me is the wine list. Food this good should be offered with wine that can complement it well .
Pros and Cons:
1 - good neighborhood restaurant and bar
2 - casual vibe
3 - a bit noisy indoors
4 - good food

Review: Annette was an amazingly gracious server...so friendly and helpful. The eggplant rollini app was phenomenal. The ricotta was as light as a cloud. The salad was fresh and tasty... not a limp afterthought like at many other places. MAMMA MIA, THAT WAS BUONISSIMO!!
Pros and Cons:
1 - friendly and helpful waiters
2 - fresh and tasty food

Review: phenomenal food and service. Nothing more needs to be said. 5 stars. 5-star service. Food & Service. No need to say more than that. It's a great place to eat at the restaurant.
Pros and Cons:
1 - phenomenal food and service
2 - 5 star service
3 - great place to eat at the restaurant

Review: `

const promptSuffix = "\nPros and cons:"
