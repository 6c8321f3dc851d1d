package feedback

import (
	"fmt"
	"strings"
)

const systemPrompt = "Kamu adalah mentor ramah dan membimbing anak-anak dengan sabar."

func buildUserMessage(req Request) string {
	var b strings.Builder

	b.WriteString("Kamu adalah mentor untuk anak usia 7–12 tahun. ")
	b.WriteString("Tugasmu adalah memberikan umpan balik positif dan edukatif agar anak bisa mengenali emosi dengan lebih baik.\n\n")

	fmt.Fprintf(&b, "Cerita yang dibaca anak adalah:\n%q\n\n", req.Narrative)

	if req.Followup {
		fmt.Fprintf(&b, "Anak ditanya: %q\n", FollowupPrompt)
		fmt.Fprintf(&b, "Jawaban anak: %q\n\n", req.Answer)
	} else {
		fmt.Fprintf(&b, "Jawaban anak: %q\n\n", req.Answer)
	}

	verdict := "belum tepat"
	if req.Correct {
		verdict = "benar"
	}
	fmt.Fprintf(&b, "Jawaban ini dianggap %s dalam mengenali emosi yang muncul dalam cerita.\n\n", verdict)

	if len(req.ExpectedEmotions) > 0 {
		fmt.Fprintf(&b, "Emosi yang diharapkan muncul dari cerita ini: %s.\n\n", strings.Join(req.ExpectedEmotions, ", "))
	}

	b.WriteString("Buatlah umpan balik singkat dalam 2-3 kalimat yang:\n")
	b.WriteString("- Ramah dan mendukung\n")
	b.WriteString("- Sesuai dengan konteks cerita dan jawaban anak\n")
	b.WriteString("- Tidak menggunakan istilah teknis atau bahasa sulit\n")
	b.WriteString("- Dalam bahasa Indonesia\n")
	b.WriteString("- Berikan saran apa yang bisa mereka lakukan untuk membantu sesuai dengan konteks cerita\n\n")
	b.WriteString("Jawabanmu akan langsung dibaca oleh anak tersebut.")

	return b.String()
}
