package testutil

import "fmt"

// RulingText renders a parseable Indonesian court ruling for tests. The
// case number, category keyword and statute clause vary per call so multi-
// document fixtures extract distinct records.
func RulingText(caseNumber, defendant, facts, statuteClause string) string {
	return fmt.Sprintf(`PUTUSAN Nomor : %s
DEMI KEADILAN BERDASARKAN KETUHANAN YANG MAHA ESA
Pengadilan Negeri memeriksa dan mengadili perkara pidana atas:
Nama : %s, Umur : 37 tahun, Jenis Kelamin : Laki-laki,
Pekerjaan : Wiraswasta,
Alamat : Jalan Melati No. 12 RT 003 RW 005 Kelurahan Sukamaju Kecamatan Cilodong Kota Depok
DUDUK PERKARA
%s
MENGADILI
Menyatakan Terdakwa terbukti secara sah dan meyakinkan bersalah melanggar %s
dan menjatuhkan pidana penjara selama 2 tahun.
Diputuskan dalam sidang terbuka pada tanggal 15 Maret 2021.`,
		caseNumber, defendant, facts, statuteClause)
}

// NarcoticsRuling is a ready-made narcotics ruling keyed by case number.
func NarcoticsRuling(caseNumber string) string {
	return RulingText(
		caseNumber,
		"AGUS SETIAWAN bin KARTO",
		"Bahwa terdakwa tanpa hak dan melawan hukum telah menguasai narkotika golongan satu "+
			"jenis sabu seberat 0,4 gram yang dibeli dari seseorang di wilayah Depok untuk "+
			"dipakai sendiri tanpa izin dari pihak yang berwenang.",
		"Pasal 112 Ayat (1) Undang-Undang Nomor 35 Tahun 2009")
}

// CorruptionRuling is a ready-made corruption ruling keyed by case number.
func CorruptionRuling(caseNumber string) string {
	return RulingText(
		caseNumber,
		"BUDI SANTOSO bin SLAMET",
		"Bahwa terdakwa selaku bendahara dinas telah menggunakan anggaran negara untuk "+
			"kepentingan pribadi dengan cara memalsukan bukti pertanggungjawaban korupsi "+
			"sehingga merugikan keuangan negara sebesar dua ratus juta rupiah.",
		"Pasal 2 Ayat (1) jo Pasal 3")
}
