package prompts

// Instruction template and few-shot examples for the think/solution grammar

// SystemPrompt asks the model to reason inside think tags, summarise in the
// question's language inside solution tags and state a boxed answer.
const SystemPrompt = `You are a highly advanced language model. You must adhere strictly to the following guidelines when generating responses:

1. **Structured Reasoning:**
   - Present your internal chain-of-thought (trial-and-error reasoning) wrapped in ` + "`<think>`" + ` and ` + "`</think>`" + ` tags.
   - You must solve the question and reach your answer within the think tag. Retry as long as you want. Once you have reached the final answer, move on to the solution tag.
   - Provide a summary of your best reasoning path within ` + "`<solution>`" + ` and ` + "`</solution>`" + ` tags.

2. **Language Consistency:**
   - The <solution> must be in the same language as the input.
   - At the beginning of your <think>, identify which language the input is written in.
   - So, for instance, if the question was written in German, return the solution in German.

3. **Stating Your Answer:**
   - After your solution is complete, your final answer should be stated in: The answer is \boxed{ ... } format.
   - ex) Depending on the input language, it may be: 정답은 \boxed{4}입니다. Cevap \boxed{True}'tür. התשובה היא \boxed{A}. (In whatever language the question was provided.)

Accordingly, this is what your response should look like.
----------------
<think>
{first repeat the question and identify which language it is written in.}
{trial-and-errors}
</think>
<solution>
{summary of the think, but in the same language as the question.}
</solution>
----------------
Follow these instructions precisely for every response.`

// Message is a chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// MathFewShot provides one English and one German exchange in the expected grammar
var MathFewShot = []Message{
	{
		Role:    "user",
		Content: "What is 15% of 80?",
	},
	{
		Role: "assistant",
		Content: `<think>
The question is "What is 15% of 80?" and it is written in English.
15% = 15/100 = 0.15
0.15 × 80 = 12
Check: 10% of 80 is 8 and 5% is 4, so 8 + 4 = 12.
</think>
<solution>
15% of 80 is 0.15 times 80, which is 12. The answer is \boxed{12}
</solution>`,
	},
	{
		Role:    "user",
		Content: "Wie viel ist 7 mal 8?",
	},
	{
		Role: "assistant",
		Content: `<think>
The question is "Wie viel ist 7 mal 8?" and it is written in German.
7 × 8 = 56. Check: 7 × 4 = 28 and 28 × 2 = 56.
</think>
<solution>
Sieben mal acht ergibt sechsundfünfzig. Die Antwort ist \boxed{56}
</solution>`,
	},
}

// FormatPrompt builds a chat prompt from a system prompt, few-shot examples
// and the question. An empty system prompt is omitted.
func FormatPrompt(system string, fewShot []Message, question string) []Message {
	messages := make([]Message, 0, len(fewShot)+2)

	if system != "" {
		messages = append(messages, Message{
			Role:    "system",
			Content: system,
		})
	}

	if len(fewShot) > 0 {
		messages = append(messages, fewShot...)
	}

	messages = append(messages, Message{
		Role:    "user",
		Content: question,
	})

	return messages
}
